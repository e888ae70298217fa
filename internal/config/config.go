// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for daynotes. It
// is populated by merging values from environment variables, command-line
// flags, an optional JSON file, and built-in defaults (in that priority
// order, first non-zero value wins).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Vault holds paths for the vault key metadata and the device-bound key.
	Vault Vault `envPrefix:"VAULT_"`

	// Storage holds the local encrypted database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the sync backend address and timeouts. An empty base URL
	// means the client runs in local-only mode.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds scheduling knobs for the background sync engine.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Vault holds file locations for key material metadata.
type Vault struct {
	// MetaPath is where the wrapped vault key metadata JSON lives.
	// Env: VAULT_META_PATH
	MetaPath string `env:"META_PATH"`

	// DeviceKeyPath is where the device-bound wrapping key lives. The file is
	// created on first vault creation; if it cannot be created the client
	// degrades to password-only unlock.
	// Env: VAULT_DEVICE_KEY_PATH
	DeviceKeyPath string `env:"DEVICE_KEY_PATH"`
}

// Storage groups local persistence settings.
type Storage struct {
	// DB holds the local sqlite settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local sqlite database.
type DB struct {
	// DSN is the sqlite file path (created on first run if missing).
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Adapter holds settings for the outbound sync transport.
type Adapter struct {
	// BaseURL is the sync backend base URL (e.g. "https://notes.example.com").
	// Empty disables cloud sync entirely.
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-request timeout for outbound calls
	// (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds scheduling settings for the background sync engine.
type Sync struct {
	// Interval is the periodic full-sync cadence.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// Debounce is the quiet period after a local change before a sync cycle
	// is triggered.
	// Env: SYNC_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// SaveDebounce is the quiet period applied to rapid note edits before a
	// save hits the local store.
	// Env: SYNC_SAVE_DEBOUNCE
	SaveDebounce time.Duration `env:"SAVE_DEBOUNCE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first non-zero value wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
