// Package crypto wraps the symmetric primitives used by the vault: AES-GCM
// authenticated encryption, PBKDF2 key derivation, key wrapping, and CSPRNG
// byte generation. It knows nothing about storage, networking, or notes.
package crypto

import "github.com/mkondratev/daynotes/models"

// DefaultKDFIterations is the PBKDF2-SHA256 iteration count written into new
// vault metadata. Existing vaults keep whatever count they were created with.
const DefaultKDFIterations = 210_000

// Cipher is the crypto primitives adapter behind which all key material is
// handled.
//
// Scheme:
//
//	salt, vaultKey = GenerateSalt() + GenerateVaultKey()
//	wrappingKey    = DeriveWrappingKey(password, salt, iterations)
//	wrapped        = WrapKey(vaultKey, wrappingKey)
type Cipher interface {
	// GenerateSalt returns a fresh 16-byte KDF salt from the OS CSPRNG.
	// The salt is not a secret; it is persisted in clear.
	GenerateSalt() ([]byte, error)

	// GenerateVaultKey returns a fresh random 256-bit vault key. The key
	// never touches durable storage unwrapped.
	GenerateVaultKey() ([]byte, error)

	// DeriveWrappingKey derives a 256-bit wrapping key from a password via
	// PBKDF2-SHA256. Deterministic: identical inputs yield identical keys.
	DeriveWrappingKey(password string, salt []byte, iterations int) []byte

	// WrapKey encrypts key under wrappingKey with AES-256-GCM and a fresh
	// random nonce. The result is safe to persist: without the wrapping key
	// it is indistinguishable from random noise.
	WrapKey(key, wrappingKey []byte) (models.WrappedKey, error)

	// UnwrapKey reverses WrapKey. Returns an error if the wrapping key is
	// wrong or the blob is corrupted (authentication-tag mismatch) — the two
	// cases are deliberately indistinguishable.
	UnwrapKey(wrapped models.WrappedKey, wrappingKey []byte) ([]byte, error)

	// Encrypt seals plaintext under key with AES-256-GCM and returns the
	// nonce and ciphertext separately, both base64, matching the at-rest
	// record shape.
	Encrypt(plaintext, key []byte) (nonce, ciphertext string, err error)

	// Decrypt reverses Encrypt. Fails rather than returning corrupted
	// content when the key or ciphertext is wrong.
	Decrypt(nonce, ciphertext string, key []byte) ([]byte, error)

	// KeyID returns the stable identifier of a raw key: hex SHA-256 of the
	// key bytes. Used to tag records with the key that encrypted them.
	KeyID(key []byte) string
}
