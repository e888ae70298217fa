package vault

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDeviceKeyUnavailable is returned when no device-bound key exists and,
// for Get, none can be read. Callers treat this as "fall back to password".
var ErrDeviceKeyUnavailable = errors.New("device key unavailable")

// DeviceKeyStore holds the device-bound wrapping key that enables the
// skip-password unlock path. The key never leaves this device.
type DeviceKeyStore interface {
	// Get returns the device key, or ErrDeviceKeyUnavailable if none has
	// been created on this device.
	Get() ([]byte, error)

	// GetOrCreate returns the device key, creating a fresh random one on
	// first use. Returns an error if the key cannot be persisted (e.g. the
	// directory is read-only) — callers degrade to password-only unlock.
	GetOrCreate() ([]byte, error)
}

type fileDeviceKeyStore struct {
	path string
}

// NewFileDeviceKeyStore returns a DeviceKeyStore backed by a 0600 key file.
// Platforms without a writable profile directory simply never get the fast
// unlock path; that is a degradation, not an error.
func NewFileDeviceKeyStore(path string) DeviceKeyStore {
	return &fileDeviceKeyStore{path: path}
}

func (s *fileDeviceKeyStore) Get() ([]byte, error) {
	key, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDeviceKeyUnavailable
		}
		return nil, fmt.Errorf("read device key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrDeviceKeyUnavailable
	}
	return key, nil
}

func (s *fileDeviceKeyStore) GetOrCreate() ([]byte, error) {
	if key, err := s.Get(); err == nil {
		return key, nil
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate device key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("create device key dir: %w", err)
	}
	if err := os.WriteFile(s.path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}
	return key, nil
}
