package vault

import "errors"

var (
	// ErrInvalidPassword is returned when the password-wrapped vault key
	// cannot be unwrapped. Wrong password and corrupted metadata are
	// deliberately indistinguishable.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNotInitialized is returned when no vault metadata exists yet for
	// this profile.
	ErrNotInitialized = errors.New("vault not initialized")

	// ErrInitialization is returned when a new vault cannot be created
	// (random generation or metadata persistence failed). Retry-able.
	ErrInitialization = errors.New("vault initialization failed")
)
