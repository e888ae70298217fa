package config

import (
	"fmt"
	"time"
)

// ClientVault holds file locations for local key material.
type ClientVault struct {
	// MetaPath is the vault metadata JSON file path.
	MetaPath string
	// DeviceKeyPath is the device-bound key file path.
	DeviceKeyPath string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the sync backend base URL; empty means local-only mode.
	BaseURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the sqlite file path used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientSync contains sync engine scheduling settings.
type ClientSync struct {
	// Interval defines the periodic full-sync cadence.
	Interval time.Duration
	// Debounce is the quiet period after local edits before a sync runs.
	Debounce time.Duration
	// SaveDebounce is the quiet period for coalescing rapid note edits.
	SaveDebounce time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Vault contains key material file locations.
	Vault ClientVault
	// Adapter contains the sync backend address and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains sync scheduling settings.
	Sync ClientSync
}

// CloudEnabled reports whether a sync backend is configured.
func (cfg *ClientConfig) CloudEnabled() bool {
	return cfg.Adapter.BaseURL != ""
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Vault: ClientVault{
			MetaPath:      cfg.Vault.MetaPath,
			DeviceKeyPath: cfg.Vault.DeviceKeyPath,
		},
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Sync: ClientSync{
			Interval:     cfg.Sync.Interval,
			Debounce:     cfg.Sync.Debounce,
			SaveDebounce: cfg.Sync.SaveDebounce,
		},
	}

	return clientCfg, clientCfg.validate()
}
