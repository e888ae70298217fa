package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewManager(
		crypto.NewCipher(),
		NewFileMetaStore(filepath.Join(dir, "vault-meta.json")),
		NewFileDeviceKeyStore(filepath.Join(dir, "device.key")),
		logger.Nop(),
	)
	return m, dir
}

func TestCreateVault_ThenUnlockWithPassword(t *testing.T) {
	m, _ := newTestManager(t)

	key, err := m.CreateVault("correct-horse")
	require.NoError(t, err)
	require.Len(t, key, 32)
	assert.True(t, m.HasVault())

	unlocked, err := m.UnlockWithPassword("correct-horse")
	require.NoError(t, err)
	assert.Equal(t, key, unlocked)
}

func TestUnlockWithPassword_WrongPassword(t *testing.T) {
	m, dir := newTestManager(t)

	_, err := m.CreateVault("correct-horse")
	require.NoError(t, err)

	metaPath := filepath.Join(dir, "vault-meta.json")
	before, err := os.ReadFile(metaPath)
	require.NoError(t, err)

	_, err = m.UnlockWithPassword("wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	// A failed unlock must not alter the persisted metadata.
	after, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUnlockWithPassword_NoVault(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.UnlockWithPassword("anything")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestTryUnlockWithDeviceKey_FreshDevice(t *testing.T) {
	m, _ := newTestManager(t)

	// No vault, no device key: must return nil without panicking or erroring.
	assert.Nil(t, m.TryUnlockWithDeviceKey())
}

func TestTryUnlockWithDeviceKey_AfterCreate(t *testing.T) {
	m, _ := newTestManager(t)

	key, err := m.CreateVault("pw")
	require.NoError(t, err)

	got := m.TryUnlockWithDeviceKey()
	require.NotNil(t, got)
	assert.Equal(t, key, got)
}

func TestTryUnlockWithDeviceKey_MissingDeviceKeyFile(t *testing.T) {
	m, dir := newTestManager(t)

	_, err := m.CreateVault("pw")
	require.NoError(t, err)

	// Simulate a second device: metadata synced over, device key absent.
	require.NoError(t, os.Remove(filepath.Join(dir, "device.key")))
	assert.Nil(t, m.TryUnlockWithDeviceKey())
}

func TestEnsureDeviceWrappedKey_RestoresFastUnlock(t *testing.T) {
	m, dir := newTestManager(t)

	key, err := m.CreateVault("pw")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "device.key")))
	require.Nil(t, m.TryUnlockWithDeviceKey())

	m.EnsureDeviceWrappedKey(key)

	got := m.TryUnlockWithDeviceKey()
	require.NotNil(t, got)
	assert.Equal(t, key, got)
}

func TestAccountKey_RegisterAndUnlock(t *testing.T) {
	m, _ := newTestManager(t)

	accountKey, record, err := m.CreateAccountKey("cloud-pass")
	require.NoError(t, err)
	require.Len(t, accountKey, 32)
	assert.NotEmpty(t, record.WrappedKey)
	assert.NotEmpty(t, record.KDFSalt)
	assert.Equal(t, crypto.DefaultKDFIterations, record.KDFIterations)

	unlocked, err := m.UnlockAccountKey("cloud-pass", record)
	require.NoError(t, err)
	assert.Equal(t, accountKey, unlocked)

	_, err = m.UnlockAccountKey("nope", record)
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAccountKey_OfflineCache(t *testing.T) {
	m, _ := newTestManager(t)

	localKey, err := m.CreateVault("local-pass")
	require.NoError(t, err)

	accountKey, _, err := m.CreateAccountKey("cloud-pass")
	require.NoError(t, err)

	require.Nil(t, m.TryCachedAccountKey(localKey))

	require.NoError(t, m.CacheAccountKey(accountKey, localKey))
	assert.Equal(t, accountKey, m.TryCachedAccountKey(localKey))

	// Cache is unreadable under a different local key.
	other, err := crypto.NewCipher().GenerateVaultKey()
	require.NoError(t, err)
	assert.Nil(t, m.TryCachedAccountKey(other))
}

func TestMetaStore_AtomicSaveKeepsConsistentObject(t *testing.T) {
	dir := t.TempDir()
	store := NewFileMetaStore(filepath.Join(dir, "meta.json"))

	m := NewManager(crypto.NewCipher(), store, NewFileDeviceKeyStore(filepath.Join(dir, "device.key")), logger.Nop())
	_, err := m.CreateVault("pw")
	require.NoError(t, err)

	meta, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Version)
	assert.NotEmpty(t, meta.KDF.Salt)
	assert.NotZero(t, meta.KDF.Iterations)
	assert.NotEmpty(t, meta.Wrapped.Password.Data)

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".vault-meta-")
	}
}
