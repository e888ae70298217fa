// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondratev/daynotes/internal/config"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/models"
)

func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{BaseURL: serverURL, RequestTimeout: 5 * time.Second}

	a, err := NewHTTPServerAdapter(adapterCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

// unsigned HS256-shaped token with sub="acc-42"
func testJWT(t *testing.T) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"acc-42"}`))
	signature := base64.RawURLEncoding.EncodeToString([]byte("not-checked"))
	return header + "." + claims + "." + signature
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://notes.example.com/", want: "https://notes.example.com"},
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "   ", wantErr: true},
		{in: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeBaseURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLogin_StoresTokenAndAccountID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var creds credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Login)

		w.Header().Set("Authorization", "Bearer "+testJWT(t))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	require.NoError(t, a.Login(context.Background(), "alice", "secret"))

	assert.NotEmpty(t, a.Token())
	assert.Equal(t, "acc-42", a.AccountID())
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid login/password"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	require.NoError(t, a.Ping(context.Background()))

	srv.Close()
	assert.Error(t, a.Ping(context.Background()))
}

func TestUpsertNote_SendsExpectedRevision(t *testing.T) {
	accepted := models.RemoteNote{
		ID: "rid-1", Date: "14-03-2026", Revision: 4,
		Ciphertext: "enc", Nonce: "n",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/notes/14-03-2026", r.URL.Path)
		assert.Equal(t, "3", r.Header.Get("If-Match-Revision"))
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(accepted)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken(testJWT(t))

	got, err := a.UpsertNote(context.Background(),
		models.RemoteNote{Date: "14-03-2026", Ciphertext: "enc", Nonce: "n", Revision: 4}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Revision)
	assert.Equal(t, "rid-1", got.ID)
}

func TestUpsertNote_RevisionConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("revision conflict"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.UpsertNote(context.Background(), models.RemoteNote{Date: "14-03-2026"}, 1)
	require.ErrorIs(t, err, ErrRevisionConflict)
}

func TestGetNote_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetNote(context.Background(), "01-01-2026")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetNotesSince(t *testing.T) {
	page := notesPage{
		Notes:  []models.RemoteNote{{ID: "rid-1", Date: "01-02-2026", Revision: 2}},
		Cursor: "2026-02-01T10:00:00Z",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notes/changes", r.URL.Path)
		assert.Equal(t, "prev-cursor", r.URL.Query().Get("since"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	cursor := "prev-cursor"
	notes, next, err := a.GetNotesSince(context.Background(), &cursor)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "2026-02-01T10:00:00Z", next)
}

func TestGetNotesSince_NilCursorOmitsParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("since"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(notesPage{})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, _, err := a.GetNotesSince(context.Background(), nil)
	require.NoError(t, err)
}

func TestGetAccountKeys_NotRegistered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetAccountKeys(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImage_Multipart(t *testing.T) {
	img := models.RemoteImage{ID: "img-1", NoteDate: "14-03-2026", Type: models.ImageInline}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/images/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		_, _, err := r.FormFile("blob")
		assert.NoError(t, err)
		assert.NotEmpty(t, r.FormValue("meta"))

		accepted := img
		accepted.StoragePath = "acc-42/14-03-2026/img-1.enc"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(accepted)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.UploadImage(context.Background(), img, []byte("ciphertext"))
	require.NoError(t, err)
	assert.Equal(t, "acc-42/14-03-2026/img-1.enc", got.StoragePath)
}

func TestDeleteImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/images/img-9", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	require.NoError(t, a.DeleteImage(context.Background(), "img-9"))
}
