// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mkondratev/daynotes/models"
)

const (
	saltBytes = 16
	keyBytes  = 32
)

// aeadCipher is the private implementation of [Cipher].
type aeadCipher struct{}

// NewCipher constructs the production [Cipher].
func NewCipher() Cipher {
	return &aeadCipher{}
}

// GenerateSalt implements [Cipher]. It reads 16 random bytes from the OS
// CSPRNG. Returns an error if the random read fails.
func (c *aeadCipher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltBytes)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// GenerateVaultKey implements [Cipher]. It reads 32 random bytes from the OS
// CSPRNG. Returns an error if the random read fails.
func (c *aeadCipher) GenerateVaultKey() ([]byte, error) {
	key := make([]byte, keyBytes)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveWrappingKey implements [Cipher] via PBKDF2-SHA256.
func (c *aeadCipher) DeriveWrappingKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha256.New)
}

// WrapKey implements [Cipher]. Nonce and ciphertext are kept separate so the
// wrapped form maps directly onto [models.WrappedKey].
func (c *aeadCipher) WrapKey(key, wrappingKey []byte) (models.WrappedKey, error) {
	nonce, ciphertext, err := c.seal(key, wrappingKey)
	if err != nil {
		return models.WrappedKey{}, fmt.Errorf("wrap key: %w", err)
	}
	return models.WrappedKey{
		Nonce: base64.StdEncoding.EncodeToString(nonce),
		Data:  base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// UnwrapKey implements [Cipher].
func (c *aeadCipher) UnwrapKey(wrapped models.WrappedKey, wrappingKey []byte) ([]byte, error) {
	nonce, err := base64.StdEncoding.DecodeString(wrapped.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(wrapped.Data)
	if err != nil {
		return nil, fmt.Errorf("decode wrapped key: %w", err)
	}

	key, err := c.open(nonce, data, wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("unwrap key: %w", err)
	}
	return key, nil
}

// Encrypt implements [Cipher].
func (c *aeadCipher) Encrypt(plaintext, key []byte) (string, string, error) {
	nonce, ciphertext, err := c.seal(plaintext, key)
	if err != nil {
		return "", "", fmt.Errorf("encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(ciphertext),
		nil
}

// Decrypt implements [Cipher].
func (c *aeadCipher) Decrypt(nonce, ciphertext string, key []byte) ([]byte, error) {
	rawNonce, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	rawCiphertext, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	plaintext, err := c.open(rawNonce, rawCiphertext, key)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// KeyID implements [Cipher].
func (c *aeadCipher) KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

func (c *aeadCipher) seal(plaintext, key []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	return nonce, gcm.Seal(nil, nonce, plaintext, nil), nil
}

func (c *aeadCipher) open(nonce, ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("bad nonce length")
	}

	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keyBytes {
		return nil, fmt.Errorf("invalid key length: %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
