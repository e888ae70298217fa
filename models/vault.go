package models

// VaultMetaVersion is the only vault metadata format this build understands.
const VaultMetaVersion = 1

// WrappedKey is a vault key encrypted under a wrapping key: AES-GCM nonce and
// ciphertext, both base64.
type WrappedKey struct {
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// KDFParams are the password-derivation parameters stored next to the wrapped
// forms. The salt is not secret.
type KDFParams struct {
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
}

// WrappedForms holds every wrapped form of the vault key that exists for this
// profile. Password is always present; the others are optimisations.
type WrappedForms struct {
	// Password is the vault key wrapped under the password-derived key.
	Password WrappedKey `json:"password"`

	// Device is the vault key wrapped under the device-bound key, present
	// after the first successful unlock on this device.
	Device *WrappedKey `json:"device,omitempty"`

	// Account is the cloud vault key wrapped under the local vault key,
	// cached so cloud notes stay readable offline.
	Account *WrappedKey `json:"account,omitempty"`
}

// VaultMeta is the persisted vault metadata, one per device profile. The
// vault key itself never touches durable storage unwrapped.
type VaultMeta struct {
	Version int          `json:"version"`
	KDF     KDFParams    `json:"kdf"`
	Wrapped WrappedForms `json:"wrapped"`
}
