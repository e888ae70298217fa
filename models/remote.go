package models

import "time"

// RemoteNote is one row of the backend notes collection. Ciphertext and nonce
// are opaque to the backend; ServerUpdatedAt is assigned server-side on every
// accepted upsert.
type RemoteNote struct {
	ID              string     `json:"id"`
	Date            DateKey    `json:"date"`
	Ciphertext      string     `json:"ciphertext"`
	Nonce           string     `json:"nonce"`
	KeyID           string     `json:"key_id"`
	Revision        int64      `json:"revision"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`
	Deleted         bool       `json:"deleted"`
}

// RemoteImage is one row of the backend images collection. StoragePath points
// at the ciphertext blob in the backend's object store.
type RemoteImage struct {
	ID              string     `json:"id"`
	NoteDate        DateKey    `json:"note_date"`
	Type            ImageType  `json:"type"`
	Filename        string     `json:"filename"`
	MimeType        string     `json:"mime_type"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	Size            int64      `json:"size"`
	SHA256          string     `json:"sha256"`
	Nonce           string     `json:"nonce"`
	KeyID           string     `json:"key_id"`
	StoragePath     string     `json:"storage_path"`
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`
	Deleted         bool       `json:"deleted"`
}

// AccountKeys is the account-scoped key record: the cloud vault key wrapped
// under a password-derived key, plus the KDF parameters needed to re-derive
// that wrapping key on another device.
type AccountKeys struct {
	WrappedKey    string `json:"wrapped_dek"`
	WrapNonce     string `json:"dek_nonce"`
	KDFSalt       string `json:"kdf_salt"`
	KDFIterations int    `json:"kdf_iterations"`
	Version       int    `json:"version"`
}
