// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

// Package vault manages the long-lived symmetric vault key that encrypts all
// note and image content for one profile. The key exists unwrapped only in
// memory; durable storage ever sees wrapped forms.
package vault

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/models"
)

// Manager derives, wraps, persists, and unlocks vault keys.
type Manager struct {
	cipher     crypto.Cipher
	meta       MetaStore
	deviceKeys DeviceKeyStore
	log        *logger.Logger
}

// NewManager constructs a Manager over the given metadata and device-key
// stores.
func NewManager(cipher crypto.Cipher, meta MetaStore, deviceKeys DeviceKeyStore, log *logger.Logger) *Manager {
	return &Manager{
		cipher:     cipher,
		meta:       meta,
		deviceKeys: deviceKeys,
		log:        log,
	}
}

// HasVault reports whether vault metadata exists for this profile.
func (m *Manager) HasVault() bool {
	return m.meta.Exists()
}

// CreateVault generates a fresh random vault key, wraps it under a
// password-derived key and (best effort) under the device-bound key, and
// persists the complete metadata object atomically. Returns the unwrapped
// vault key, or an error wrapping ErrInitialization if key generation or
// persistence fails.
func (m *Manager) CreateVault(password string) ([]byte, error) {
	salt, err := m.cipher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: generate salt: %w", ErrInitialization, err)
	}
	vaultKey, err := m.cipher.GenerateVaultKey()
	if err != nil {
		return nil, fmt.Errorf("%w: generate vault key: %w", ErrInitialization, err)
	}

	wrappingKey := m.cipher.DeriveWrappingKey(password, salt, crypto.DefaultKDFIterations)
	passwordWrapped, err := m.cipher.WrapKey(vaultKey, wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap vault key: %w", ErrInitialization, err)
	}

	meta := models.VaultMeta{
		Version: models.VaultMetaVersion,
		KDF: models.KDFParams{
			Salt:       base64.StdEncoding.EncodeToString(salt),
			Iterations: crypto.DefaultKDFIterations,
		},
		Wrapped: models.WrappedForms{Password: passwordWrapped},
	}

	if deviceWrapped, ok := m.wrapUnderDeviceKey(vaultKey); ok {
		meta.Wrapped.Device = &deviceWrapped
	}

	if err = m.meta.Save(meta); err != nil {
		return nil, fmt.Errorf("%w: persist vault meta: %w", ErrInitialization, err)
	}

	return vaultKey, nil
}

// UnlockWithPassword re-derives the wrapping key from the persisted KDF
// parameters and unwraps the password-wrapped vault key. Returns
// ErrNotInitialized when no vault exists, or ErrInvalidPassword when the
// unwrap fails for any reason.
func (m *Manager) UnlockWithPassword(password string) ([]byte, error) {
	meta, err := m.meta.Load()
	if err != nil {
		return nil, err
	}

	salt, err := saltFromBase64(meta.KDF.Salt)
	if err != nil {
		// Corrupted salt is not distinguishable from a wrong password.
		return nil, ErrInvalidPassword
	}

	wrappingKey := m.cipher.DeriveWrappingKey(password, salt, meta.KDF.Iterations)
	vaultKey, err := m.cipher.UnwrapKey(meta.Wrapped.Password, wrappingKey)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return vaultKey, nil
}

// TryUnlockWithDeviceKey attempts the device-wrapped unlock path. Returns nil
// (never an error) when the path is unavailable or the unwrap fails: this is
// an optimization, the password path always remains.
func (m *Manager) TryUnlockWithDeviceKey() []byte {
	meta, err := m.meta.Load()
	if err != nil || meta.Wrapped.Device == nil {
		return nil
	}

	deviceKey, err := m.deviceKeys.Get()
	if err != nil {
		return nil
	}

	vaultKey, err := m.cipher.UnwrapKey(*meta.Wrapped.Device, deviceKey)
	if err != nil {
		m.log.Debug().Err(err).Msg("device-wrapped unlock failed, falling back to password")
		return nil
	}
	return vaultKey
}

// EnsureDeviceWrappedKey idempotently (re)creates the device-wrapped form of
// vaultKey and persists the whole metadata object. Best effort: failures are
// swallowed because device key storage may simply be unavailable.
func (m *Manager) EnsureDeviceWrappedKey(vaultKey []byte) {
	meta, err := m.meta.Load()
	if err != nil {
		return
	}

	deviceWrapped, ok := m.wrapUnderDeviceKey(vaultKey)
	if !ok {
		return
	}

	meta.Wrapped.Device = &deviceWrapped
	if err = m.meta.Save(meta); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist device-wrapped vault key")
	}
}

// CreateAccountKey generates a fresh cloud vault key for an authenticated
// account and returns it together with the account key record to register on
// the backend. Nothing is persisted locally.
func (m *Manager) CreateAccountKey(password string) ([]byte, models.AccountKeys, error) {
	salt, err := m.cipher.GenerateSalt()
	if err != nil {
		return nil, models.AccountKeys{}, fmt.Errorf("%w: generate salt: %w", ErrInitialization, err)
	}
	accountKey, err := m.cipher.GenerateVaultKey()
	if err != nil {
		return nil, models.AccountKeys{}, fmt.Errorf("%w: generate account key: %w", ErrInitialization, err)
	}

	wrappingKey := m.cipher.DeriveWrappingKey(password, salt, crypto.DefaultKDFIterations)
	wrapped, err := m.cipher.WrapKey(accountKey, wrappingKey)
	if err != nil {
		return nil, models.AccountKeys{}, fmt.Errorf("%w: wrap account key: %w", ErrInitialization, err)
	}

	record := models.AccountKeys{
		WrappedKey:    wrapped.Data,
		WrapNonce:     wrapped.Nonce,
		KDFSalt:       base64.StdEncoding.EncodeToString(salt),
		KDFIterations: crypto.DefaultKDFIterations,
		Version:       models.VaultMetaVersion,
	}
	return accountKey, record, nil
}

// UnlockAccountKey unwraps the account's cloud vault key from its remote key
// record using the account password. Returns ErrInvalidPassword on unwrap
// failure.
func (m *Manager) UnlockAccountKey(password string, record models.AccountKeys) ([]byte, error) {
	salt, err := saltFromBase64(record.KDFSalt)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	wrappingKey := m.cipher.DeriveWrappingKey(password, salt, record.KDFIterations)
	accountKey, err := m.cipher.UnwrapKey(models.WrappedKey{
		Nonce: record.WrapNonce,
		Data:  record.WrappedKey,
	}, wrappingKey)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return accountKey, nil
}

// CacheAccountKey stores the cloud vault key wrapped under the local vault
// key inside the profile metadata, so cloud notes stay readable offline.
func (m *Manager) CacheAccountKey(accountKey, localVaultKey []byte) error {
	meta, err := m.meta.Load()
	if err != nil {
		return err
	}

	wrapped, err := m.cipher.WrapKey(accountKey, localVaultKey)
	if err != nil {
		return fmt.Errorf("wrap account key for cache: %w", err)
	}

	meta.Wrapped.Account = &wrapped
	if err = m.meta.Save(meta); err != nil {
		return fmt.Errorf("persist cached account key: %w", err)
	}
	return nil
}

// TryCachedAccountKey recovers the locally cached cloud vault key, or nil if
// no cache exists or it cannot be unwrapped.
func (m *Manager) TryCachedAccountKey(localVaultKey []byte) []byte {
	meta, err := m.meta.Load()
	if err != nil || meta.Wrapped.Account == nil {
		return nil
	}

	accountKey, err := m.cipher.UnwrapKey(*meta.Wrapped.Account, localVaultKey)
	if err != nil {
		return nil
	}
	return accountKey
}

func (m *Manager) wrapUnderDeviceKey(vaultKey []byte) (models.WrappedKey, bool) {
	deviceKey, err := m.deviceKeys.GetOrCreate()
	if err != nil {
		m.log.Debug().Err(err).Msg("device key storage unavailable, password-only unlock")
		return models.WrappedKey{}, false
	}

	wrapped, err := m.cipher.WrapKey(vaultKey, deviceKey)
	if err != nil {
		m.log.Debug().Err(err).Msg("device wrap failed, password-only unlock")
		return models.WrappedKey{}, false
	}
	return wrapped, true
}

func saltFromBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty salt")
	}
	return base64.StdEncoding.DecodeString(s)
}
