// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package config

// validate checks that the final merged [ClientConfig] satisfies all
// invariants before the client starts.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Vault.MetaPath == "" {
		return ErrInvalidVaultConfigs
	}

	if cfg.Adapter.BaseURL != "" && cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.Debounce <= 0 || cfg.Sync.SaveDebounce <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
