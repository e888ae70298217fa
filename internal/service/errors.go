package service

import "errors"

var (
	// ErrDecryption means stored ciphertext could not be decrypted with the
	// active vault key. Surfaced as-is so callers can distinguish corrupted
	// data or a wrong key from transient store failures.
	ErrDecryption = errors.New("decryption failed")

	// ErrMigration wraps failures during the legacy data import.
	ErrMigration = errors.New("migration failed")
)
