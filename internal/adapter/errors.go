package adapter

import "errors"

var (
	// ErrUnauthorized means the bearer token is missing, expired, or rejected.
	ErrUnauthorized = errors.New("client unauthorized")
	// ErrRevisionConflict means the backend holds a newer revision than the
	// expected one sent with the write.
	ErrRevisionConflict = errors.New("revision conflict")
	// ErrNotFound means the requested remote resource does not exist.
	ErrNotFound = errors.New("remote resource not found")
)
