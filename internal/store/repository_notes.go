// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkondratev/daynotes/models"
)

// Timestamps are stored as RFC 3339 text so rows stay portable across sqlite
// drivers and readable in manual inspection.
const timeLayout = time.RFC3339Nano

type noteStore struct {
	db *DB
}

// NewNoteStore returns the sqlite-backed NoteStore.
func NewNoteStore(db *DB) NoteStore {
	return &noteStore{db: db}
}

func (s *noteStore) Save(ctx context.Context, rec models.LocalNoteRecord) error {
	_, err := s.db.ExecContext(ctx, upsertNoteQuery,
		string(rec.Date),
		rec.RemoteID,
		rec.Nonce,
		rec.Ciphertext,
		rec.KeyID,
		rec.Revision,
		rec.UpdatedAt.UTC().Format(timeLayout),
		timePtrToNullString(rec.ServerUpdatedAt),
		rec.Deleted,
		rec.Dirty,
	)
	if err != nil {
		s.db.log.Err(err).Str("func", "noteStore.Save").Str("date", string(rec.Date)).Msg("error saving note record")
		return fmt.Errorf("error saving note record: %w", err)
	}
	return nil
}

func (s *noteStore) Get(ctx context.Context, date models.DateKey) (models.LocalNoteRecord, error) {
	row := s.db.QueryRowContext(ctx, getNoteQuery, string(date))

	rec, err := scanNoteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalNoteRecord{}, ErrNotFound
		}
		s.db.log.Err(err).Str("func", "noteStore.Get").Str("date", string(date)).Msg("error reading note record")
		return models.LocalNoteRecord{}, fmt.Errorf("error reading note record: %w", err)
	}
	return rec, nil
}

func (s *noteStore) GetAll(ctx context.Context) ([]models.LocalNoteRecord, error) {
	return s.queryNotes(ctx, getAllNotesQuery)
}

func (s *noteStore) GetAllForYear(ctx context.Context, year int) ([]models.LocalNoteRecord, error) {
	return s.queryNotes(ctx, getNotesForYearQuery, fmt.Sprintf("%04d", year))
}

func (s *noteStore) GetDirty(ctx context.Context) ([]models.LocalNoteRecord, error) {
	return s.queryNotes(ctx, getDirtyNotesQuery)
}

func (s *noteStore) Delete(ctx context.Context, date models.DateKey) error {
	if _, err := s.db.ExecContext(ctx, deleteNoteQuery, string(date)); err != nil {
		s.db.log.Err(err).Str("func", "noteStore.Delete").Str("date", string(date)).Msg("error deleting note record")
		return fmt.Errorf("error deleting note record: %w", err)
	}
	return nil
}

func (s *noteStore) queryNotes(ctx context.Context, query string, args ...any) ([]models.LocalNoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.db.log.Err(err).Str("func", "noteStore.queryNotes").Msg("error querying note records")
		return nil, fmt.Errorf("error querying note records: %w", err)
	}
	defer rows.Close()

	var recs []models.LocalNoteRecord
	for rows.Next() {
		rec, err := scanNoteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning note record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note records: %w", err)
	}
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNoteRecord(row rowScanner) (models.LocalNoteRecord, error) {
	var (
		rec             models.LocalNoteRecord
		date            string
		updatedAt       string
		serverUpdatedAt sql.NullString
	)

	err := row.Scan(
		&date,
		&rec.RemoteID,
		&rec.Nonce,
		&rec.Ciphertext,
		&rec.KeyID,
		&rec.Revision,
		&updatedAt,
		&serverUpdatedAt,
		&rec.Deleted,
		&rec.Dirty,
	)
	if err != nil {
		return models.LocalNoteRecord{}, err
	}

	rec.Date = models.DateKey(date)
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return models.LocalNoteRecord{}, fmt.Errorf("error parsing updated_at: %w", err)
	}
	if rec.ServerUpdatedAt, err = nullStringToTimePtr(serverUpdatedAt); err != nil {
		return models.LocalNoteRecord{}, fmt.Errorf("error parsing server_updated_at: %w", err)
	}
	return rec, nil
}

func timePtrToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func nullStringToTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
