package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkondratev/daynotes/models"
)

// MetaStore persists the vault metadata object. Save must be atomic: a crash
// mid-write may never leave wrapped forms inconsistent with KDF parameters.
type MetaStore interface {
	// Load returns the persisted metadata, or ErrNotInitialized if none
	// exists. Metadata with an unknown version is treated as absent.
	Load() (models.VaultMeta, error)

	// Save replaces the entire metadata object in one atomic step.
	Save(meta models.VaultMeta) error

	// Exists reports whether metadata has been persisted for this profile.
	Exists() bool
}

type fileMetaStore struct {
	path string
}

// NewFileMetaStore returns a MetaStore backed by a single JSON file. Writes
// go through a temp file in the same directory followed by a rename, so
// readers observe either the old or the new object, never a torn one.
func NewFileMetaStore(path string) MetaStore {
	return &fileMetaStore{path: path}
}

func (s *fileMetaStore) Load() (models.VaultMeta, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.VaultMeta{}, ErrNotInitialized
		}
		return models.VaultMeta{}, fmt.Errorf("read vault meta: %w", err)
	}

	var meta models.VaultMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.VaultMeta{}, fmt.Errorf("decode vault meta: %w", err)
	}
	if meta.Version != models.VaultMetaVersion {
		return models.VaultMeta{}, ErrNotInitialized
	}

	return meta, nil
}

func (s *fileMetaStore) Save(meta models.VaultMeta) error {
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault meta: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create vault meta dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vault-meta-*")
	if err != nil {
		return fmt.Errorf("create vault meta temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write vault meta: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close vault meta temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod vault meta: %w", err)
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace vault meta: %w", err)
	}
	return nil
}

func (s *fileMetaStore) Exists() bool {
	_, err := s.Load()
	return err == nil
}
