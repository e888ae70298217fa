package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-server sync backend base URL
//	-d local database file path
//	-vault-meta vault metadata file path
//	-device-key device key file path
//	-c/-config json file path with configs
//	-request-timeout outbound request timeout (e.g., "30s")
//	-sync-interval periodic sync cadence (e.g., "5m")
//	-sync-debounce post-edit sync quiet period (e.g., "2s")
//	-save-debounce note save quiet period (e.g., "400ms")
func ParseFlags() *StructuredConfig {
	var serverBaseURL string
	var databaseDSN string
	var vaultMetaPath string
	var deviceKeyPath string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var syncDebounce time.Duration
	var saveDebounce time.Duration

	flag.StringVar(&serverBaseURL, "server", "", "Sync backend base URL")
	flag.StringVar(&databaseDSN, "d", "", "Local database file path")
	flag.StringVar(&vaultMetaPath, "vault-meta", "", "Vault metadata file path")
	flag.StringVar(&deviceKeyPath, "device-key", "", "Device key file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")
	flag.DurationVar(&syncDebounce, "sync-debounce", 0, "Sync debounce after edits (e.g., 2s)")
	flag.DurationVar(&saveDebounce, "save-debounce", 0, "Save debounce for rapid edits (e.g., 400ms)")

	flag.Parse()

	return &StructuredConfig{
		Vault: Vault{
			MetaPath:      vaultMetaPath,
			DeviceKeyPath: deviceKeyPath,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Adapter: Adapter{
			BaseURL:        serverBaseURL,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			Interval:     syncInterval,
			Debounce:     syncDebounce,
			SaveDebounce: saveDebounce,
		},
		JSONFilePath: jsonConfigPath,
	}
}
