// Package adapter is the outbound transport layer: an HTTP/REST client for
// the daynotes sync backend. The backend only ever sees ciphertext; every
// payload crossing this boundary is already encrypted.
package adapter

import (
	"context"

	"github.com/mkondratev/daynotes/models"
)

// ServerAdapter is the full sync backend contract. All methods map transport
// failures to sentinel errors from this package where the caller is expected
// to branch on them (ErrRevisionConflict, ErrUnauthorized, ErrNotFound).
type ServerAdapter interface {
	// SetToken stores the bearer token used by authenticated requests.
	SetToken(token string)
	// Token returns the current bearer token, empty if unauthenticated.
	Token() string
	// AccountID returns the account identifier parsed from the bearer token,
	// empty if unauthenticated.
	AccountID() string

	// Register creates an account and stores the returned bearer token.
	Register(ctx context.Context, login, password string) error
	// Login authenticates and stores the returned bearer token.
	Login(ctx context.Context, login, password string) error

	// Ping probes backend reachability. Any error means offline.
	Ping(ctx context.Context) error

	// GetAccountKeys fetches the account key record, ErrNotFound if the
	// account has not registered one yet.
	GetAccountKeys(ctx context.Context) (models.AccountKeys, error)
	// PutAccountKeys registers the account key record.
	PutAccountKeys(ctx context.Context, keys models.AccountKeys) error

	// GetNotesIndex lists all notes for a year.
	GetNotesIndex(ctx context.Context, year int) ([]models.RemoteNote, error)
	// GetNote fetches one note by date, ErrNotFound when absent.
	GetNote(ctx context.Context, date models.DateKey) (models.RemoteNote, error)
	// GetNotesSince returns notes changed after cursor (all notes when cursor
	// is nil) together with the next cursor value.
	GetNotesSince(ctx context.Context, cursor *string) ([]models.RemoteNote, string, error)
	// UpsertNote writes a note guarded by the expected current revision.
	// Returns ErrRevisionConflict when the backend holds a newer revision.
	UpsertNote(ctx context.Context, note models.RemoteNote, expectedRevision int64) (models.RemoteNote, error)

	// UploadImage stores an encrypted image blob and its metadata row.
	UploadImage(ctx context.Context, img models.RemoteImage, ciphertext []byte) (models.RemoteImage, error)
	// DeleteImage removes the blob and tombstones the metadata row.
	DeleteImage(ctx context.Context, id string) error
	// GetImage fetches the encrypted blob for an image by id.
	GetImage(ctx context.Context, id string) (models.RemoteImage, []byte, error)
	// GetImagesForNote lists image metadata for one note.
	GetImagesForNote(ctx context.Context, date models.DateKey) ([]models.RemoteImage, error)
}
