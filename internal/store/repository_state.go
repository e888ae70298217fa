package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/models"
)

type syncStateStore struct {
	db *DB
}

// NewSyncStateStore returns the sqlite-backed SyncStateStore.
func NewSyncStateStore(db *DB) SyncStateStore {
	return &syncStateStore{db: db}
}

func (s *syncStateStore) GetSyncState(ctx context.Context) (models.SyncState, error) {
	var cursor sql.NullString
	err := s.db.QueryRowContext(ctx, getSyncStateQuery).Scan(&cursor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No row yet means a fresh profile with no cursor.
			return models.SyncState{}, nil
		}
		s.db.log.Err(err).Str("func", "syncStateStore.GetSyncState").Msg("error reading sync state")
		return models.SyncState{}, fmt.Errorf("error reading sync state: %w", err)
	}

	var state models.SyncState
	if cursor.Valid {
		state.Cursor = &cursor.String
	}
	return state, nil
}

func (s *syncStateStore) SetSyncState(ctx context.Context, state models.SyncState) error {
	var cursor sql.NullString
	if state.Cursor != nil {
		cursor = sql.NullString{String: *state.Cursor, Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, setSyncStateQuery, cursor); err != nil {
		s.db.log.Err(err).Str("func", "syncStateStore.SetSyncState").Msg("error saving sync state")
		return fmt.Errorf("error saving sync state: %w", err)
	}
	return nil
}

type settingsStore struct {
	db *DB
}

// NewSettingsStore returns the sqlite-backed SettingsStore.
func NewSettingsStore(db *DB) SettingsStore {
	return &settingsStore{db: db}
}

func (s *settingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getSettingQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		s.db.log.Err(err).Str("func", "settingsStore.Get").Str("key", key).Msg("error reading setting")
		return "", fmt.Errorf("error reading setting: %w", err)
	}
	return value, nil
}

func (s *settingsStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, setSettingQuery, key, value); err != nil {
		s.db.log.Err(err).Str("func", "settingsStore.Set").Str("key", key).Msg("error saving setting")
		return fmt.Errorf("error saving setting: %w", err)
	}
	return nil
}
