// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mkondratev/daynotes/internal/config"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/models"
)

type httpServerAdapter struct {
	client *resty.Client

	mu        sync.RWMutex
	token     string
	accountID string

	logger *logger.Logger
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type notesPage struct {
	Notes  []models.RemoteNote `json:"notes"`
	Cursor string              `json:"cursor"`
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.BaseURL and configures the underlying client with the resolved
// base URL and request timeout.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, log *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter base url: %w", err)
	}

	timeout := adapterCfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &httpServerAdapter{client: cli, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken stores token (whitespace-trimmed) for the Authorization header of
// all subsequent authenticated requests, and caches the account ID parsed
// from its subject claim.
func (h *httpServerAdapter) SetToken(token string) {
	token = strings.TrimSpace(token)
	accountID, err := parseAccountIDFromJWT(token)
	if err != nil {
		h.logger.Debug().Err(err).Msg("token subject not parseable")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	h.accountID = accountID
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) AccountID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.accountID
}

// Register POSTs credentials to POST /api/auth/register. On success the
// bearer token is extracted from the Authorization response header and stored
// via SetToken.
func (h *httpServerAdapter) Register(ctx context.Context, login, password string) error {
	return h.authenticate(ctx, "/api/auth/register", login, password)
}

// Login POSTs credentials to POST /api/auth/login. On success the bearer
// token is extracted from the Authorization response header and stored via
// SetToken.
func (h *httpServerAdapter) Login(ctx context.Context, login, password string) error {
	return h.authenticate(ctx, "/api/auth/login", login, password)
}

func (h *httpServerAdapter) authenticate(ctx context.Context, path, login, password string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(credentials{Login: login, Password: password}).
		Post(path)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("auth parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

// Ping GETs the health endpoint. Used as the online/offline probe by the sync
// engine; any error counts as offline.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) GetAccountKeys(ctx context.Context) (models.AccountKeys, error) {
	resp, err := h.authedRequest(ctx).Get("/api/account/keys")
	if err != nil {
		return models.AccountKeys{}, fmt.Errorf("get account keys request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AccountKeys{}, err
	}

	var keys models.AccountKeys
	if err = json.Unmarshal(resp.Body(), &keys); err != nil {
		return models.AccountKeys{}, fmt.Errorf("decode account keys response: %w", err)
	}
	return keys, nil
}

func (h *httpServerAdapter) PutAccountKeys(ctx context.Context, keys models.AccountKeys) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(keys).
		Put("/api/account/keys")
	if err != nil {
		return fmt.Errorf("put account keys request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) GetNotesIndex(ctx context.Context, year int) ([]models.RemoteNote, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("year", fmt.Sprintf("%04d", year)).
		Get("/api/notes/")
	if err != nil {
		return nil, fmt.Errorf("notes index request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var notes []models.RemoteNote
	if err = json.Unmarshal(resp.Body(), &notes); err != nil {
		return nil, fmt.Errorf("decode notes index response: %w", err)
	}
	return notes, nil
}

func (h *httpServerAdapter) GetNote(ctx context.Context, date models.DateKey) (models.RemoteNote, error) {
	resp, err := h.authedRequest(ctx).Get("/api/notes/" + string(date))
	if err != nil {
		return models.RemoteNote{}, fmt.Errorf("get note request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteNote{}, err
	}

	var note models.RemoteNote
	if err = json.Unmarshal(resp.Body(), &note); err != nil {
		return models.RemoteNote{}, fmt.Errorf("decode note response: %w", err)
	}
	return note, nil
}

// GetNotesSince returns all notes changed after cursor and the cursor to
// persist once the page is applied. A nil cursor requests the full
// collection (first sync).
func (h *httpServerAdapter) GetNotesSince(ctx context.Context, cursor *string) ([]models.RemoteNote, string, error) {
	req := h.authedRequest(ctx)
	if cursor != nil {
		req.SetQueryParam("since", *cursor)
	}

	resp, err := req.Get("/api/notes/changes")
	if err != nil {
		return nil, "", fmt.Errorf("notes changes request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, "", err
	}

	var page notesPage
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, "", fmt.Errorf("decode notes changes response: %w", err)
	}
	return page.Notes, page.Cursor, nil
}

// UpsertNote PUTs the note guarded by expectedRevision via the
// If-Match-Revision header. The backend rejects the write with HTTP 409 when
// its current revision differs, which surfaces here as ErrRevisionConflict.
func (h *httpServerAdapter) UpsertNote(ctx context.Context, note models.RemoteNote, expectedRevision int64) (models.RemoteNote, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("If-Match-Revision", fmt.Sprintf("%d", expectedRevision)).
		SetBody(note).
		Put("/api/notes/" + string(note.Date))
	if err != nil {
		return models.RemoteNote{}, fmt.Errorf("upsert note request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteNote{}, err
	}

	var accepted models.RemoteNote
	if err = json.Unmarshal(resp.Body(), &accepted); err != nil {
		return models.RemoteNote{}, fmt.Errorf("decode upsert note response: %w", err)
	}
	return accepted, nil
}

func (h *httpServerAdapter) UploadImage(ctx context.Context, img models.RemoteImage, ciphertext []byte) (models.RemoteImage, error) {
	meta, err := json.Marshal(img)
	if err != nil {
		return models.RemoteImage{}, fmt.Errorf("encode image meta: %w", err)
	}

	resp, err := h.authedRequest(ctx).
		SetFileReader("blob", img.ID+".enc", strings.NewReader(string(ciphertext))).
		SetMultipartField("meta", "", "application/json", strings.NewReader(string(meta))).
		Post("/api/images/")
	if err != nil {
		return models.RemoteImage{}, fmt.Errorf("upload image request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteImage{}, err
	}

	var accepted models.RemoteImage
	if err = json.Unmarshal(resp.Body(), &accepted); err != nil {
		return models.RemoteImage{}, fmt.Errorf("decode upload image response: %w", err)
	}
	return accepted, nil
}

func (h *httpServerAdapter) DeleteImage(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).Delete("/api/images/" + id)
	if err != nil {
		return fmt.Errorf("delete image request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) GetImage(ctx context.Context, id string) (models.RemoteImage, []byte, error) {
	resp, err := h.authedRequest(ctx).Get("/api/images/" + id)
	if err != nil {
		return models.RemoteImage{}, nil, fmt.Errorf("get image request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteImage{}, nil, err
	}

	var img models.RemoteImage
	if header := resp.Header().Get("X-Image-Meta"); header != "" {
		if err = json.Unmarshal([]byte(header), &img); err != nil {
			return models.RemoteImage{}, nil, fmt.Errorf("decode image meta header: %w", err)
		}
	}
	return img, resp.Body(), nil
}

func (h *httpServerAdapter) GetImagesForNote(ctx context.Context, date models.DateKey) ([]models.RemoteImage, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("date", string(date)).
		Get("/api/images/")
	if err != nil {
		return nil, fmt.Errorf("images for note request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var imgs []models.RemoteImage
	if err = json.Unmarshal(resp.Body(), &imgs); err != nil {
		return nil, fmt.Errorf("decode images response: %w", err)
	}
	return imgs, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	bodyLower := strings.ToLower(body)

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode() == http.StatusConflict || strings.Contains(bodyLower, "revision conflict") {
		return ErrRevisionConflict
	}
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// parseAccountIDFromJWT extracts the subject claim without verifying the
// signature; the client only needs the account identifier for storage paths,
// verification happens server-side.
func parseAccountIDFromJWT(tokenString string) (string, error) {
	if tokenString == "" {
		return "", nil
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	return claims.GetSubject()
}
