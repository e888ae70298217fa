package config

import "errors"

var (
	// ErrInvalidStorageConfigs indicates a missing or unusable local DB path.
	ErrInvalidStorageConfigs = errors.New("invalid storage configs: local database path is required")
	// ErrInvalidVaultConfigs indicates missing vault key material paths.
	ErrInvalidVaultConfigs = errors.New("invalid vault configs: meta path is required")
	// ErrInvalidAdapterConfigs indicates an inconsistent sync backend setup.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configs: request timeout is required when a server is set")
	// ErrInvalidSyncConfigs indicates non-positive sync scheduling values.
	ErrInvalidSyncConfigs = errors.New("invalid sync configs: interval and debounce must be positive")
)
