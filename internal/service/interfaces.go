// Package service holds the client's domain logic: the encrypting note and
// image repositories, the conflict-resolving sync engine, and the legacy data
// migration engine. Everything below this package deals in ciphertext;
// everything above it deals in plaintext.
package service

import (
	"context"

	"github.com/mkondratev/daynotes/models"
)

// NoteRepository is the plaintext-facing note API. Content is encrypted on
// write and decrypted on read with the vault key held by the repository.
type NoteRepository interface {
	// Save persists content for a date, marking the record dirty and bumping
	// its revision. Empty content on a never-synced note removes the record.
	Save(ctx context.Context, date models.DateKey, content string) error

	// Import persists a note keeping its original UpdatedAt instead of
	// stamping the current time. Used by the legacy migration.
	Import(ctx context.Context, note models.Note) error

	// Get returns the decrypted note for a date, store.ErrNotFound when
	// absent (soft-deleted notes count as absent).
	Get(ctx context.Context, date models.DateKey) (models.Note, error)

	// GetAllDates lists dates that currently hold a live note.
	GetAllDates(ctx context.Context) ([]models.DateKey, error)

	// GetAllDatesForYear lists live note dates within one year.
	GetAllDatesForYear(ctx context.Context, year int) ([]models.DateKey, error)

	// Delete removes the note for a date: physically when it never synced,
	// as a dirty tombstone otherwise.
	Delete(ctx context.Context, date models.DateKey) error
}

// ImageRepository is the plaintext-facing image API.
type ImageRepository interface {
	// Add encrypts and stores an image, queueing it for upload.
	Add(ctx context.Context, date models.DateKey, imageType models.ImageType, filename, mimeType string, width, height int, data []byte) (models.ImageMeta, error)

	// Get returns decrypted image bytes together with their metadata.
	Get(ctx context.Context, id string) (models.ImageMeta, []byte, error)

	// ListForNote lists metadata for a note's live images.
	ListForNote(ctx context.Context, date models.DateKey) ([]models.ImageMeta, error)

	// Remove deletes an image locally and queues the remote removal.
	Remove(ctx context.Context, id string) error

	// RemoveForNote removes every image belonging to a note. Used when the
	// note itself is deleted.
	RemoveForNote(ctx context.Context, date models.DateKey) error
}

// StatusListener receives sync status transitions. Callbacks run on the sync
// goroutine and must not block.
type StatusListener func(status models.SyncStatus)

// SyncEngine drives bidirectional synchronization against the backend.
type SyncEngine interface {
	// Status returns the current engine status.
	Status() models.SyncStatus

	// Subscribe registers a listener and returns an unsubscribe func. The
	// listener is immediately invoked with the current status.
	Subscribe(l StatusListener) (unsubscribe func())

	// NotifyChange schedules a debounced sync after a local edit. Calls made
	// during the quiet period coalesce into one run.
	NotifyChange()

	// SyncNow triggers an immediate sync. If one is already running, another
	// full pass runs right after it finishes.
	SyncNow()

	// SetOnline flips connectivity state. Transitioning to online triggers an
	// immediate sync.
	SetOnline(online bool)

	// PendingOps reports how many local changes still await upload.
	PendingOps(ctx context.Context) (models.PendingOpsSummary, error)

	// Close stops timers and waits for an in-flight sync to finish.
	Close()
}

// LegacyNoteSource yields plaintext notes from a pre-encryption installation.
type LegacyNoteSource interface {
	// Notes returns every legacy note. Order is not significant.
	Notes(ctx context.Context) ([]models.Note, error)
}

// Migrator imports legacy plaintext data into the encrypted store.
type Migrator interface {
	// NeedsMigration reports whether a legacy import has not completed yet.
	NeedsMigration(ctx context.Context) (bool, error)

	// Run imports all legacy notes. Idempotent: a rerun after interruption
	// re-imports safely because the done flag is only set after the last
	// record is written.
	Run(ctx context.Context) error
}
