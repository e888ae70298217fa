// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/models"
)

type noteRepository struct {
	cipher   crypto.Cipher
	vaultKey []byte
	keyID    string
	notes    store.NoteStore
	clock    Clock
	log      *logger.Logger
}

// NewNoteRepository builds the encrypting note repository over the local
// store. vaultKey is held for the lifetime of the repository; it is the
// active key for both directions.
func NewNoteRepository(cipher crypto.Cipher, vaultKey []byte, notes store.NoteStore, clock Clock, log *logger.Logger) NoteRepository {
	return &noteRepository{
		cipher:   cipher,
		vaultKey: vaultKey,
		keyID:    cipher.KeyID(vaultKey),
		notes:    notes,
		clock:    clock,
		log:      log,
	}
}

// Save encrypts content and upserts the record for date: dirty, revision
// bumped, content timestamp set to now. Saving empty content deletes the note
// (physically when it never synced, as a tombstone otherwise).
func (r *noteRepository) Save(ctx context.Context, date models.DateKey, content string) error {
	return r.saveAt(ctx, date, content, r.clock.Now().UTC())
}

// Import persists a note carrying its original edit timestamp. Used by the
// legacy migration: a migrated record must not outrank an older cloud copy
// in timestamp conflicts just because the import ran today.
func (r *noteRepository) Import(ctx context.Context, note models.Note) error {
	at := note.UpdatedAt.UTC()
	if note.UpdatedAt.IsZero() {
		at = r.clock.Now().UTC()
	}
	return r.saveAt(ctx, note.Date, note.Content, at)
}

func (r *noteRepository) saveAt(ctx context.Context, date models.DateKey, content string, updatedAt time.Time) error {
	if _, err := models.ParseDateKey(string(date)); err != nil {
		return fmt.Errorf("invalid note date: %w", err)
	}

	if content == "" {
		return r.Delete(ctx, date)
	}

	existing, err := r.notes.Get(ctx, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load existing note: %w", err)
	}

	nonce, ciphertext, err := r.cipher.Encrypt([]byte(content), r.vaultKey)
	if err != nil {
		return fmt.Errorf("encrypt note content: %w", err)
	}

	// The revision bumps once per clean-to-dirty transition, not per edit:
	// a dirty record always sits exactly one revision above the last state
	// the backend acknowledged.
	revision := existing.Revision
	if !existing.Dirty {
		revision++
	}

	rec := models.LocalNoteRecord{
		Date:            date,
		RemoteID:        existing.RemoteID,
		Nonce:           nonce,
		Ciphertext:      ciphertext,
		KeyID:           r.keyID,
		Revision:        revision,
		UpdatedAt:       updatedAt,
		ServerUpdatedAt: existing.ServerUpdatedAt,
		Deleted:         false,
		Dirty:           true,
	}

	if err = r.notes.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist note record: %w", err)
	}
	return nil
}

// Get decrypts and returns the note for date. Soft-deleted records read as
// absent. A record whose ciphertext cannot be opened surfaces ErrDecryption.
func (r *noteRepository) Get(ctx context.Context, date models.DateKey) (models.Note, error) {
	rec, err := r.notes.Get(ctx, date)
	if err != nil {
		return models.Note{}, err
	}
	if rec.Deleted {
		return models.Note{}, store.ErrNotFound
	}

	plaintext, err := r.cipher.Decrypt(rec.Nonce, rec.Ciphertext, r.vaultKey)
	if err != nil {
		r.log.Warn().Str("date", string(date)).Str("key_id", rec.KeyID).Msg("note ciphertext unreadable with active key")
		return models.Note{}, fmt.Errorf("%w: note %s: %w", ErrDecryption, date, err)
	}

	return models.Note{
		Date:      rec.Date,
		Content:   string(plaintext),
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (r *noteRepository) GetAllDates(ctx context.Context) ([]models.DateKey, error) {
	recs, err := r.notes.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return liveDates(recs), nil
}

func (r *noteRepository) GetAllDatesForYear(ctx context.Context, year int) ([]models.DateKey, error) {
	recs, err := r.notes.GetAllForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return liveDates(recs), nil
}

// Delete removes the note for date. A record that never reached the backend
// is removed physically; a synced one becomes a dirty tombstone so the
// deletion propagates on the next sync.
func (r *noteRepository) Delete(ctx context.Context, date models.DateKey) error {
	rec, err := r.notes.Get(ctx, date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load note for delete: %w", err)
	}

	if rec.RemoteID == "" {
		if err = r.notes.Delete(ctx, date); err != nil {
			return fmt.Errorf("remove unsynced note: %w", err)
		}
		return nil
	}

	rec.Deleted = true
	if !rec.Dirty {
		rec.Revision++
	}
	rec.Dirty = true
	rec.UpdatedAt = r.clock.Now().UTC()
	rec.Nonce = ""
	rec.Ciphertext = ""

	if err = r.notes.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist note tombstone: %w", err)
	}
	return nil
}

func liveDates(recs []models.LocalNoteRecord) []models.DateKey {
	dates := make([]models.DateKey, 0, len(recs))
	for _, rec := range recs {
		if !rec.Deleted {
			dates = append(dates, rec.Date)
		}
	}
	return dates
}
