// Package store is the durable local layer: encrypted note and image records,
// per-record sync metadata, the sync cursor, and small key-value settings, all
// in one sqlite database per vault profile. The store persists opaque
// ciphertext plus metadata; it has no knowledge of plaintext content.
package store

import (
	"context"

	"github.com/mkondratev/daynotes/models"
)

// NoteStore persists [models.LocalNoteRecord]s keyed by date. Writes are
// transactional at single-record granularity: a concurrent reader never
// observes a half-written record.
type NoteStore interface {
	// Save upserts the record for its date.
	Save(ctx context.Context, rec models.LocalNoteRecord) error

	// Get returns the record for date, or ErrNotFound.
	Get(ctx context.Context, date models.DateKey) (models.LocalNoteRecord, error)

	// GetAll returns every record, including soft-deleted ones.
	GetAll(ctx context.Context) ([]models.LocalNoteRecord, error)

	// GetAllForYear returns every record whose date falls in year.
	GetAllForYear(ctx context.Context, year int) ([]models.LocalNoteRecord, error)

	// GetDirty returns records with local changes not yet accepted remotely.
	GetDirty(ctx context.Context) ([]models.LocalNoteRecord, error)

	// Delete physically removes the record for date. Only permitted for
	// records that never had a remote counterpart; synced notes are
	// soft-deleted through Save instead.
	Delete(ctx context.Context, date models.DateKey) error
}

// ImageStore persists encrypted image blobs and their metadata rows.
type ImageStore interface {
	// SaveImage writes ciphertext and metadata in one transaction.
	SaveImage(ctx context.Context, rec models.ImageRecord, meta models.ImageMeta) error

	// GetImage returns the ciphertext record for id, or ErrNotFound.
	GetImage(ctx context.Context, id string) (models.ImageRecord, error)

	// SaveMeta upserts a metadata row on its own (e.g. pendingOp updates).
	SaveMeta(ctx context.Context, meta models.ImageMeta) error

	// GetMeta returns the metadata row for id, or ErrNotFound.
	GetMeta(ctx context.Context, id string) (models.ImageMeta, error)

	// GetAllMeta returns every metadata row.
	GetAllMeta(ctx context.Context) ([]models.ImageMeta, error)

	// GetMetaByNoteDate returns metadata for all images owned by a note.
	GetMetaByNoteDate(ctx context.Context, date models.DateKey) ([]models.ImageMeta, error)

	// DeleteImage removes only the ciphertext blob, leaving the metadata row
	// (with its pendingOp) in place.
	DeleteImage(ctx context.Context, id string) error

	// DeleteImageAndMeta removes both rows for id.
	DeleteImageAndMeta(ctx context.Context, id string) error
}

// SyncStateStore holds the single sync cursor record.
type SyncStateStore interface {
	GetSyncState(ctx context.Context) (models.SyncState, error)
	SetSyncState(ctx context.Context, state models.SyncState) error
}

// SettingsStore is explicit key-value storage for small global flags (e.g.
// the migration-done marker). Injected rather than ambient so tests can
// substitute an in-memory implementation.
type SettingsStore interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Storages aggregates every local repository backed by one sqlite database.
type Storages struct {
	Notes     NoteStore
	Images    ImageStore
	SyncState SyncStateStore
	Settings  SettingsStore
}

// NewStorages builds the full repository set over db.
func NewStorages(db *DB) *Storages {
	return &Storages{
		Notes:     NewNoteStore(db),
		Images:    NewImageStore(db),
		SyncState: NewSyncStateStore(db),
		Settings:  NewSettingsStore(db),
	}
}
