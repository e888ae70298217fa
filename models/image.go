package models

import "time"

// ImageType tells whether an image is the note background or embedded inline.
type ImageType string

const (
	ImageBackground ImageType = "background"
	ImageInline     ImageType = "inline"
)

// PendingOp marks the remote operation an image record still owes the backend.
type PendingOp string

const (
	// PendingNone means the record is fully reconciled.
	PendingNone PendingOp = ""
	// PendingUpload means the ciphertext blob and metadata row still have to
	// be pushed to the backend.
	PendingUpload PendingOp = "upload"
	// PendingDelete means the remote tombstone still has to be written; the
	// local ciphertext is already gone.
	PendingDelete PendingOp = "delete"
)

// ImageRecord is the encrypted binary blob of one attachment, keyed by the
// image id. Ciphertext is the raw AES-GCM output; the store never sees the
// plaintext bytes.
type ImageRecord struct {
	ID         string `json:"id"`
	Nonce      string `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// ImageMeta describes one attachment. Each image belongs to exactly one note
// date; deleting the note cascades to its images.
type ImageMeta struct {
	ID              string     `json:"id"`
	NoteDate        DateKey    `json:"note_date"`
	Type            ImageType  `json:"type"`
	Filename        string     `json:"filename"`
	MimeType        string     `json:"mime_type"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	Size            int64      `json:"size"`
	SHA256          string     `json:"sha256"`
	KeyID           string     `json:"key_id"`
	PendingOp       PendingOp  `json:"pending_op"`
	RemotePath      string     `json:"remote_path,omitempty"`
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`
}
