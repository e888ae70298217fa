// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

// Package client assembles the daynotes client: storage, vault, repositories,
// sync engine, and background jobs, behind one lifecycle object that a
// frontend drives.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkondratev/daynotes/internal/adapter"
	"github.com/mkondratev/daynotes/internal/config"
	"github.com/mkondratev/daynotes/internal/crypto"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/service"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/internal/vault"
	"github.com/mkondratev/daynotes/internal/workers"
)

// Mode says which key encrypts content and where sync goes.
type Mode int

const (
	// ModeLocal encrypts with the profile's local vault key; no sync.
	ModeLocal Mode = iota
	// ModeCloud encrypts with the account key and syncs with the backend.
	ModeCloud
)

// ErrLocked is returned by operations that need an unlocked vault.
var ErrLocked = errors.New("vault is locked")

// App owns every long-lived component of a running client.
type App struct {
	cfg    *config.ClientConfig
	log    *logger.Logger
	cipher crypto.Cipher
	vault  *vault.Manager
	db     *store.DB
	store  *store.Storages
	server adapter.ServerAdapter

	mode     Mode
	localKey []byte

	notes    service.NoteRepository
	images   service.ImageRepository
	queue    *service.SaveQueue
	engine   service.SyncEngine
	syncJob  workers.Job
	migrator service.Migrator
	legacy   service.LegacyNoteSource
}

// NewApp opens the local database and builds the locked application. When the
// config carries a backend URL the HTTP adapter is created too; nothing talks
// to it until cloud mode is entered.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		cipher: crypto.NewCipher(),
		db:     db,
		store:  store.NewStorages(db),
	}
	a.vault = vault.NewManager(
		a.cipher,
		vault.NewFileMetaStore(cfg.Vault.MetaPath),
		vault.NewFileDeviceKeyStore(cfg.Vault.DeviceKeyPath),
		log,
	)

	if cfg.CloudEnabled() {
		a.server, err = adapter.NewHTTPServerAdapter(cfg.Adapter, log)
		if err != nil {
			return nil, fmt.Errorf("create server adapter: %w", err)
		}
	}

	return a, nil
}

// HasVault reports whether this profile has been initialised.
func (a *App) HasVault() bool { return a.vault.HasVault() }

// SetLegacySource registers a pre-encryption data source; Unlock runs the
// import before the app is usable.
func (a *App) SetLegacySource(src service.LegacyNoteSource) { a.legacy = src }

// CreateVault initialises a fresh profile and unlocks it.
func (a *App) CreateVault(ctx context.Context, password string) error {
	key, err := a.vault.CreateVault(password)
	if err != nil {
		return err
	}
	return a.activate(ctx, key, ModeLocal)
}

// Unlock opens the vault with the password and builds the content layer.
func (a *App) Unlock(ctx context.Context, password string) error {
	key, err := a.vault.UnlockWithPassword(password)
	if err != nil {
		return err
	}
	a.vault.EnsureDeviceWrappedKey(key)
	return a.activate(ctx, key, ModeLocal)
}

// TryUnlockWithDeviceKey attempts the fast path. Returns false when the
// device-wrapped key is unavailable; the caller falls back to Unlock.
func (a *App) TryUnlockWithDeviceKey(ctx context.Context) (bool, error) {
	key := a.vault.TryUnlockWithDeviceKey()
	if key == nil {
		return false, nil
	}
	if err := a.activate(ctx, key, ModeLocal); err != nil {
		return false, err
	}
	return true, nil
}

// ConnectCloud authenticates against the backend, obtains (or registers) the
// account key, caches it for offline starts, and switches the content layer
// to cloud mode.
func (a *App) ConnectCloud(ctx context.Context, login, password string) error {
	if a.server == nil {
		return fmt.Errorf("no sync backend configured")
	}
	if a.localKey == nil {
		return ErrLocked
	}

	if err := a.server.Login(ctx, login, password); err != nil {
		return fmt.Errorf("cloud login: %w", err)
	}

	accountKey, err := a.obtainAccountKey(ctx, password)
	if err != nil {
		return err
	}

	if err = a.vault.CacheAccountKey(accountKey, a.localKey); err != nil {
		a.log.Warn().Err(err).Msg("account key not cached for offline use")
	}

	return a.activate(ctx, accountKey, ModeCloud)
}

// TryConnectCloudOffline switches to cloud mode using the cached account key,
// without network. Returns false when no usable cache exists.
func (a *App) TryConnectCloudOffline(ctx context.Context) (bool, error) {
	if a.server == nil || a.localKey == nil {
		return false, nil
	}

	accountKey := a.vault.TryCachedAccountKey(a.localKey)
	if accountKey == nil {
		return false, nil
	}
	if err := a.activate(ctx, accountKey, ModeCloud); err != nil {
		return false, err
	}
	a.engine.SetOnline(false)
	return true, nil
}

func (a *App) obtainAccountKey(ctx context.Context, password string) ([]byte, error) {
	record, err := a.server.GetAccountKeys(ctx)
	if err == nil {
		key, uerr := a.vault.UnlockAccountKey(password, record)
		if uerr != nil {
			return nil, fmt.Errorf("unlock account key: %w", uerr)
		}
		return key, nil
	}
	if !errors.Is(err, adapter.ErrNotFound) {
		return nil, fmt.Errorf("fetch account keys: %w", err)
	}

	// First device on this account: generate and register the key record.
	key, record, err := a.vault.CreateAccountKey(password)
	if err != nil {
		return nil, err
	}
	if err = a.server.PutAccountKeys(ctx, record); err != nil {
		return nil, fmt.Errorf("register account keys: %w", err)
	}
	return key, nil
}

// activate (re)builds the content layer around the given content key.
func (a *App) activate(ctx context.Context, contentKey []byte, mode Mode) error {
	a.teardownContentLayer()

	if mode == ModeLocal {
		a.localKey = contentKey
	}
	a.mode = mode

	clock := service.NewRealClock()
	a.notes = service.NewNoteRepository(a.cipher, contentKey, a.store.Notes, clock, a.log)
	a.images = service.NewImageRepository(a.cipher, contentKey, a.store.Images, a.log)

	if a.legacy != nil {
		a.migrator = service.NewMigrator(a.legacy, a.notes, a.store.Settings, a.log)
		if err := a.migrator.Run(ctx); err != nil {
			return err
		}
	}

	if mode == ModeCloud {
		a.engine = service.NewEngine(a.store, a.server, clock, a.cfg.Sync.Debounce, a.log)
		a.syncJob = workers.NewSyncJob(a.engine)
	} else {
		a.engine = service.NewLocalEngine()
	}
	a.queue = service.NewSaveQueue(a.notes, clock, a.cfg.Sync.SaveDebounce, a.engine.NotifyChange, a.log)

	return nil
}

func (a *App) teardownContentLayer() {
	if a.syncJob != nil {
		a.syncJob.Stop()
		a.syncJob = nil
	}
	if a.queue != nil {
		a.queue.Close()
		a.queue = nil
	}
	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}
}

// Notes returns the note repository, nil while locked.
func (a *App) Notes() service.NoteRepository { return a.notes }

// Images returns the image repository, nil while locked.
func (a *App) Images() service.ImageRepository { return a.images }

// Engine returns the sync engine. Local-only profiles get a no-op engine
// that permanently reports idle.
func (a *App) Engine() service.SyncEngine { return a.engine }

// SaveQueue returns the debounced save queue, nil while locked.
func (a *App) SaveQueue() *service.SaveQueue { return a.queue }

// Mode returns the active content mode.
func (a *App) Mode() Mode { return a.mode }

// Run starts background jobs and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.notes == nil {
		return ErrLocked
	}

	if a.syncJob != nil {
		a.syncJob.Start(ctx, a.cfg.Sync.Interval)
		a.engine.SyncNow()
	}

	<-ctx.Done()
	return nil
}

// Close flushes pending saves, stops sync, and closes the database.
func (a *App) Close() {
	a.teardownContentLayer()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Err(err).Msg("error closing local database")
		}
	}
}
