// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/store"
)

// MigrationDoneKey is the settings flag marking a completed legacy import.
const MigrationDoneKey = "legacyNotesMigrated"

type migrator struct {
	source   LegacyNoteSource
	notes    NoteRepository
	settings store.SettingsStore
	log      *logger.Logger
}

// NewMigrator builds the legacy import engine. source yields plaintext notes
// from the pre-encryption installation; notes is the encrypting repository
// they are written through.
func NewMigrator(source LegacyNoteSource, notes NoteRepository, settings store.SettingsStore, log *logger.Logger) Migrator {
	return &migrator{
		source:   source,
		notes:    notes,
		settings: settings,
		log:      log,
	}
}

func (m *migrator) NeedsMigration(ctx context.Context) (bool, error) {
	done, err := m.settings.Get(ctx, MigrationDoneKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("read migration flag: %w", err)
	}
	return done != "true", nil
}

// Run imports every legacy note through the encrypting repository. The done
// flag is written only after the last note landed, so an interrupted run
// leaves the flag unset and the next start imports again; re-importing a note
// merely overwrites it with identical content.
func (m *migrator) Run(ctx context.Context) error {
	needed, err := m.NeedsMigration(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}
	if !needed {
		return nil
	}

	legacy, err := m.source.Notes(ctx)
	if err != nil {
		return fmt.Errorf("%w: read legacy notes: %w", ErrMigration, err)
	}

	imported := 0
	for _, note := range legacy {
		if note.Content == "" {
			continue
		}
		if err = m.notes.Import(ctx, note); err != nil {
			return fmt.Errorf("%w: import note %s: %w", ErrMigration, note.Date, err)
		}
		imported++
	}

	if err = m.settings.Set(ctx, MigrationDoneKey, "true"); err != nil {
		return fmt.Errorf("%w: persist done flag: %w", ErrMigration, err)
	}

	m.log.Info().Int("imported", imported).Msg("legacy notes migrated")
	return nil
}
