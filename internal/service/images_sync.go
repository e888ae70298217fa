// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/internal/adapter"
	"github.com/mkondratev/daynotes/models"
)

// syncImages drains pending image operations after the note passes. Uploads
// and deletions are independent per image; one failure does not block the
// rest and the pending marker survives for the next pass.
func (e *Engine) syncImages(ctx context.Context) error {
	metas, err := e.images.GetAllMeta(ctx)
	if err != nil {
		return fmt.Errorf("load image metadata: %w", err)
	}

	var firstErr error
	for _, meta := range metas {
		var err error
		switch meta.PendingOp {
		case models.PendingUpload:
			err = e.uploadImage(ctx, meta)
		case models.PendingDelete:
			err = e.deleteRemoteImage(ctx, meta)
		default:
			continue
		}
		if err != nil {
			e.log.Err(err).Str("image_id", meta.ID).Str("op", string(meta.PendingOp)).Msg("error syncing image")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (e *Engine) uploadImage(ctx context.Context, meta models.ImageMeta) error {
	rec, err := e.images.GetImage(ctx, meta.ID)
	if err != nil {
		return fmt.Errorf("load image blob: %w", err)
	}

	accepted, err := e.server.UploadImage(ctx, models.RemoteImage{
		ID:       meta.ID,
		NoteDate: meta.NoteDate,
		Type:     meta.Type,
		Filename: meta.Filename,
		MimeType: meta.MimeType,
		Width:    meta.Width,
		Height:   meta.Height,
		Size:     meta.Size,
		SHA256:   meta.SHA256,
		Nonce:    rec.Nonce,
		KeyID:    meta.KeyID,
	}, rec.Ciphertext)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	meta.PendingOp = models.PendingNone
	meta.RemotePath = accepted.StoragePath
	if meta.RemotePath == "" {
		// Older backends omit the storage path from the upload response;
		// derive it from the account layout: <account>/<date>/<id>.enc.
		meta.RemotePath = fmt.Sprintf("%s/%s/%s.enc", e.server.AccountID(), meta.NoteDate, meta.ID)
	}
	meta.ServerUpdatedAt = accepted.ServerUpdatedAt

	if err = e.images.SaveMeta(ctx, meta); err != nil {
		return fmt.Errorf("persist uploaded image meta: %w", err)
	}
	return nil
}

// deleteRemoteImage finishes a local removal: the backend row is deleted
// (absence counts as success), then the local delete marker goes away.
func (e *Engine) deleteRemoteImage(ctx context.Context, meta models.ImageMeta) error {
	err := e.server.DeleteImage(ctx, meta.ID)
	if err != nil && !errors.Is(err, adapter.ErrNotFound) {
		return fmt.Errorf("delete remote image: %w", err)
	}

	if err = e.images.DeleteImageAndMeta(ctx, meta.ID); err != nil {
		return fmt.Errorf("drop image delete marker: %w", err)
	}
	return nil
}
