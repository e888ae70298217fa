// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/models"
)

type imageRepository struct {
	cipher   crypto.Cipher
	vaultKey []byte
	keyID    string
	images   store.ImageStore
	log      *logger.Logger
}

// NewImageRepository builds the encrypting image repository over the local
// store.
func NewImageRepository(cipher crypto.Cipher, vaultKey []byte, images store.ImageStore, log *logger.Logger) ImageRepository {
	return &imageRepository{
		cipher:   cipher,
		vaultKey: vaultKey,
		keyID:    cipher.KeyID(vaultKey),
		images:   images,
		log:      log,
	}
}

// Add encrypts data and writes blob plus metadata in one transaction, with
// the upload queued via PendingOp. The content hash is computed over the
// plaintext so identical images dedupe regardless of nonce.
func (r *imageRepository) Add(ctx context.Context, date models.DateKey, imageType models.ImageType, filename, mimeType string, width, height int, data []byte) (models.ImageMeta, error) {
	if _, err := models.ParseDateKey(string(date)); err != nil {
		return models.ImageMeta{}, fmt.Errorf("invalid image note date: %w", err)
	}
	if len(data) == 0 {
		return models.ImageMeta{}, fmt.Errorf("empty image data")
	}

	nonce, ciphertext, err := r.cipher.Encrypt(data, r.vaultKey)
	if err != nil {
		return models.ImageMeta{}, fmt.Errorf("encrypt image: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return models.ImageMeta{}, fmt.Errorf("decode image ciphertext: %w", err)
	}

	digest := sha256.Sum256(data)
	meta := models.ImageMeta{
		ID:        uuid.NewString(),
		NoteDate:  date,
		Type:      imageType,
		Filename:  filename,
		MimeType:  mimeType,
		Width:     width,
		Height:    height,
		Size:      int64(len(data)),
		SHA256:    hex.EncodeToString(digest[:]),
		KeyID:     r.keyID,
		PendingOp: models.PendingUpload,
	}
	rec := models.ImageRecord{ID: meta.ID, Nonce: nonce, Ciphertext: blob}

	if err = r.images.SaveImage(ctx, rec, meta); err != nil {
		return models.ImageMeta{}, fmt.Errorf("persist image: %w", err)
	}
	return meta, nil
}

// Get decrypts and returns the image bytes for id.
func (r *imageRepository) Get(ctx context.Context, id string) (models.ImageMeta, []byte, error) {
	meta, err := r.images.GetMeta(ctx, id)
	if err != nil {
		return models.ImageMeta{}, nil, err
	}
	if meta.PendingOp == models.PendingDelete {
		return models.ImageMeta{}, nil, store.ErrNotFound
	}

	rec, err := r.images.GetImage(ctx, id)
	if err != nil {
		return models.ImageMeta{}, nil, err
	}

	plaintext, err := r.cipher.Decrypt(rec.Nonce, base64.StdEncoding.EncodeToString(rec.Ciphertext), r.vaultKey)
	if err != nil {
		r.log.Warn().Str("image_id", id).Str("key_id", meta.KeyID).Msg("image ciphertext unreadable with active key")
		return models.ImageMeta{}, nil, fmt.Errorf("%w: image %s: %w", ErrDecryption, id, err)
	}
	return meta, plaintext, nil
}

// ListForNote returns metadata for date's images, excluding ones queued for
// deletion.
func (r *imageRepository) ListForNote(ctx context.Context, date models.DateKey) ([]models.ImageMeta, error) {
	metas, err := r.images.GetMetaByNoteDate(ctx, date)
	if err != nil {
		return nil, err
	}

	live := metas[:0]
	for _, m := range metas {
		if m.PendingOp != models.PendingDelete {
			live = append(live, m)
		}
	}
	return live, nil
}

// Remove deletes the local blob immediately. If the image was ever uploaded
// its metadata row survives as a delete marker until the sync pass confirms
// the remote removal; a never-uploaded image disappears entirely.
func (r *imageRepository) Remove(ctx context.Context, id string) error {
	meta, err := r.images.GetMeta(ctx, id)
	if err != nil {
		return err
	}

	if meta.RemotePath == "" {
		if err = r.images.DeleteImageAndMeta(ctx, id); err != nil {
			return fmt.Errorf("remove unsynced image: %w", err)
		}
		return nil
	}

	if err = r.images.DeleteImage(ctx, id); err != nil {
		return fmt.Errorf("remove image blob: %w", err)
	}

	meta.PendingOp = models.PendingDelete
	if err = r.images.SaveMeta(ctx, meta); err != nil {
		return fmt.Errorf("persist image delete marker: %w", err)
	}
	return nil
}

// RemoveForNote removes all of date's images, including ones already queued
// for deletion (Remove on those is a no-op that keeps the marker).
func (r *imageRepository) RemoveForNote(ctx context.Context, date models.DateKey) error {
	metas, err := r.images.GetMetaByNoteDate(ctx, date)
	if err != nil {
		return err
	}

	for _, m := range metas {
		if m.PendingOp == models.PendingDelete {
			continue
		}
		if err = r.Remove(ctx, m.ID); err != nil {
			return fmt.Errorf("remove image %s: %w", m.ID, err)
		}
	}
	return nil
}
