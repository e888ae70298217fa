// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/models"
)

type imageStore struct {
	db *DB
}

// NewImageStore returns the sqlite-backed ImageStore.
func NewImageStore(db *DB) ImageStore {
	return &imageStore{db: db}
}

func (s *imageStore) SaveImage(ctx context.Context, rec models.ImageRecord, meta models.ImageMeta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting image transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, upsertImageQuery, rec.ID, rec.Nonce, rec.Ciphertext); err != nil {
		s.db.log.Err(err).Str("func", "imageStore.SaveImage").Str("id", rec.ID).Msg("error saving image blob")
		return fmt.Errorf("error saving image blob: %w", err)
	}
	if err = execUpsertImageMeta(ctx, tx, meta); err != nil {
		s.db.log.Err(err).Str("func", "imageStore.SaveImage").Str("id", meta.ID).Msg("error saving image meta")
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing image transaction: %w", err)
	}
	return nil
}

func (s *imageStore) GetImage(ctx context.Context, id string) (models.ImageRecord, error) {
	var rec models.ImageRecord
	err := s.db.QueryRowContext(ctx, getImageQuery, id).Scan(&rec.ID, &rec.Nonce, &rec.Ciphertext)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ImageRecord{}, ErrNotFound
		}
		s.db.log.Err(err).Str("func", "imageStore.GetImage").Str("id", id).Msg("error reading image blob")
		return models.ImageRecord{}, fmt.Errorf("error reading image blob: %w", err)
	}
	return rec, nil
}

func (s *imageStore) SaveMeta(ctx context.Context, meta models.ImageMeta) error {
	if err := execUpsertImageMeta(ctx, s.db.DB, meta); err != nil {
		s.db.log.Err(err).Str("func", "imageStore.SaveMeta").Str("id", meta.ID).Msg("error saving image meta")
		return err
	}
	return nil
}

func (s *imageStore) GetMeta(ctx context.Context, id string) (models.ImageMeta, error) {
	row := s.db.QueryRowContext(ctx, getImageMetaQuery, id)

	meta, err := scanImageMeta(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ImageMeta{}, ErrNotFound
		}
		s.db.log.Err(err).Str("func", "imageStore.GetMeta").Str("id", id).Msg("error reading image meta")
		return models.ImageMeta{}, fmt.Errorf("error reading image meta: %w", err)
	}
	return meta, nil
}

func (s *imageStore) GetAllMeta(ctx context.Context) ([]models.ImageMeta, error) {
	return s.queryMeta(ctx, getAllImageMetaQuery)
}

func (s *imageStore) GetMetaByNoteDate(ctx context.Context, date models.DateKey) ([]models.ImageMeta, error) {
	return s.queryMeta(ctx, getImageMetaByDateQuery, string(date))
}

func (s *imageStore) DeleteImage(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, deleteImageQuery, id); err != nil {
		s.db.log.Err(err).Str("func", "imageStore.DeleteImage").Str("id", id).Msg("error deleting image blob")
		return fmt.Errorf("error deleting image blob: %w", err)
	}
	return nil
}

func (s *imageStore) DeleteImageAndMeta(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting image transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteImageQuery, id); err != nil {
		return fmt.Errorf("error deleting image blob: %w", err)
	}
	if _, err = tx.ExecContext(ctx, deleteImageMetaQuery, id); err != nil {
		return fmt.Errorf("error deleting image meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing image transaction: %w", err)
	}
	return nil
}

func (s *imageStore) queryMeta(ctx context.Context, query string, args ...any) ([]models.ImageMeta, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.db.log.Err(err).Str("func", "imageStore.queryMeta").Msg("error querying image meta")
		return nil, fmt.Errorf("error querying image meta: %w", err)
	}
	defer rows.Close()

	var metas []models.ImageMeta
	for rows.Next() {
		meta, err := scanImageMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning image meta: %w", err)
		}
		metas = append(metas, meta)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image meta: %w", err)
	}
	return metas, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execUpsertImageMeta(ctx context.Context, db execer, meta models.ImageMeta) error {
	_, err := db.ExecContext(ctx, upsertImageMetaQuery,
		meta.ID,
		string(meta.NoteDate),
		string(meta.Type),
		meta.Filename,
		meta.MimeType,
		meta.Width,
		meta.Height,
		meta.Size,
		meta.SHA256,
		meta.KeyID,
		string(meta.PendingOp),
		meta.RemotePath,
		timePtrToNullString(meta.ServerUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("error saving image meta: %w", err)
	}
	return nil
}

func scanImageMeta(row rowScanner) (models.ImageMeta, error) {
	var (
		meta            models.ImageMeta
		noteDate        string
		imageType       string
		pendingOp       string
		serverUpdatedAt sql.NullString
	)

	err := row.Scan(
		&meta.ID,
		&noteDate,
		&imageType,
		&meta.Filename,
		&meta.MimeType,
		&meta.Width,
		&meta.Height,
		&meta.Size,
		&meta.SHA256,
		&meta.KeyID,
		&pendingOp,
		&meta.RemotePath,
		&serverUpdatedAt,
	)
	if err != nil {
		return models.ImageMeta{}, err
	}

	meta.NoteDate = models.DateKey(noteDate)
	meta.Type = models.ImageType(imageType)
	meta.PendingOp = models.PendingOp(pendingOp)
	if meta.ServerUpdatedAt, err = nullStringToTimePtr(serverUpdatedAt); err != nil {
		return models.ImageMeta{}, fmt.Errorf("error parsing server_updated_at: %w", err)
	}
	return meta, nil
}
