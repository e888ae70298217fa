package store

import "errors"

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("record not found")
