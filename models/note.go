package models

import "time"

// Note is the plaintext view of a single day's note as seen by callers of the
// note repository. Content never leaves the process unencrypted.
type Note struct {
	// Date is the calendar-day primary key of the note.
	Date DateKey `json:"date"`

	// Content is the plaintext note body.
	Content string `json:"content"`

	// UpdatedAt is the timestamp of the last local edit.
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncedNote extends Note with the synchronisation metadata tracked for
// cloud-backed vaults.
type SyncedNote struct {
	Note

	// RemoteID is the backend-assigned identifier, empty until the note has
	// been pushed at least once.
	RemoteID string `json:"remote_id,omitempty"`

	// Revision is the per-note edit counter, incremented on every local save.
	// It is the optimistic-concurrency token for pushes.
	Revision int64 `json:"revision"`

	// ServerUpdatedAt is the backend-assigned timestamp of the last accepted
	// push, nil until first sync.
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`

	// Deleted marks a soft-deleted note awaiting tombstone propagation.
	Deleted bool `json:"deleted"`
}

// LocalNoteRecord is the at-rest representation of a note in the local
// encrypted store. Ciphertext decrypts to the note content under the vault
// key and Nonce; everything else is sync metadata the store may see in clear.
type LocalNoteRecord struct {
	Date            DateKey    `json:"date"`
	RemoteID        string     `json:"remote_id,omitempty"`
	Nonce           string     `json:"nonce"`
	Ciphertext      string     `json:"ciphertext"`
	KeyID           string     `json:"key_id"`
	Revision        int64      `json:"revision"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`
	Deleted         bool       `json:"deleted"`

	// Dirty marks local changes not yet confirmed accepted by the backend.
	Dirty bool `json:"dirty"`
}
