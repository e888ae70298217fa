// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkondratev/daynotes/internal/adapter"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/store"
	"github.com/mkondratev/daynotes/models"
)

// Engine is the bidirectional sync engine. One instance runs per unlocked
// profile; all sync passes execute on a single goroutine (single-flight), so
// the push/pull logic itself never races.
type Engine struct {
	notes     store.NoteStore
	images    store.ImageStore
	syncState store.SyncStateStore
	server    adapter.ServerAdapter
	clock     Clock
	debounce  time.Duration
	log       *logger.Logger

	mu             sync.Mutex
	status         models.SyncStatus
	online         bool
	listeners      map[int]StatusListener
	nextListenerID int
	debounceTimer  Timer
	running        bool
	runAgain       bool
	closed         bool

	wg sync.WaitGroup
}

// NewEngine builds a sync engine over the local stores and the backend
// adapter. The engine starts idle and online; nothing runs until the first
// trigger.
func NewEngine(storages *store.Storages, server adapter.ServerAdapter, clock Clock, debounce time.Duration, log *logger.Logger) *Engine {
	return &Engine{
		notes:     storages.Notes,
		images:    storages.Images,
		syncState: storages.SyncState,
		server:    server,
		clock:     clock,
		debounce:  debounce,
		log:       log,
		status:    models.SyncIdle,
		online:    true,
		listeners: make(map[int]StatusListener),
	}
}

func (e *Engine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Subscribe registers a status listener and immediately delivers the current
// status to it. The returned func removes the listener; calling it twice is
// harmless.
func (e *Engine) Subscribe(l StatusListener) func() {
	e.mu.Lock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = l
	current := e.status
	e.mu.Unlock()

	l(current)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// NotifyChange (re)starts the debounce window; when it expires a sync runs.
// A burst of edits produces exactly one sync pass.
func (e *Engine) NotifyChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if e.debounceTimer != nil {
		e.debounceTimer.Reset(e.debounce)
		return
	}
	e.debounceTimer = e.clock.AfterFunc(e.debounce, e.SyncNow)
}

// SyncNow triggers a sync pass immediately. When one is already in flight it
// is marked to run again after finishing, so changes made mid-pass are never
// lost; any number of triggers during a pass collapse into one follow-up.
func (e *Engine) SyncNow() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.running {
		e.runAgain = true
		e.mu.Unlock()
		return
	}
	e.running = true
	e.wg.Add(1)
	e.mu.Unlock()

	go e.runLoop()
}

// SetOnline flips the connectivity flag. Coming back online triggers an
// immediate sync; going offline moves the status without touching data.
func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	if e.online == online || e.closed {
		e.mu.Unlock()
		return
	}
	e.online = online
	e.mu.Unlock()

	if online {
		e.SyncNow()
		return
	}
	e.setStatus(models.SyncOffline)
}

// PendingOps counts local changes awaiting upload.
func (e *Engine) PendingOps(ctx context.Context) (models.PendingOpsSummary, error) {
	dirty, err := e.notes.GetDirty(ctx)
	if err != nil {
		return models.PendingOpsSummary{}, fmt.Errorf("count dirty notes: %w", err)
	}

	metas, err := e.images.GetAllMeta(ctx)
	if err != nil {
		return models.PendingOpsSummary{}, fmt.Errorf("count pending images: %w", err)
	}

	summary := models.PendingOpsSummary{Notes: len(dirty)}
	for _, m := range metas {
		if m.PendingOp != models.PendingNone {
			summary.Images++
		}
	}
	return summary, nil
}

// Close stops the debounce timer and waits for an in-flight pass to finish.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.runAgain = false
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
	}
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) runLoop() {
	defer e.wg.Done()

	for {
		e.syncOnce(context.Background())

		e.mu.Lock()
		if !e.runAgain || e.closed {
			e.running = false
			e.mu.Unlock()
			return
		}
		e.runAgain = false
		e.mu.Unlock()
	}
}

// syncOnce is one full pass: reachability probe, push dirty notes, pull
// remote changes, image pass, cursor advance.
func (e *Engine) syncOnce(ctx context.Context) {
	e.mu.Lock()
	online := e.online
	e.mu.Unlock()

	if !online {
		e.setStatus(models.SyncOffline)
		return
	}

	e.setStatus(models.SyncSyncing)

	if err := e.server.Ping(ctx); err != nil {
		e.log.Debug().Err(err).Msg("backend unreachable, staying offline")
		e.setStatus(models.SyncOffline)
		return
	}

	var failed bool

	if err := e.pushDirtyNotes(ctx); err != nil {
		e.log.Err(err).Msg("error pushing local changes")
		failed = true
	}

	if err := e.pullRemoteChanges(ctx); err != nil {
		e.log.Err(err).Msg("error pulling remote changes")
		failed = true
	}

	if err := e.syncImages(ctx); err != nil {
		e.log.Err(err).Msg("error syncing images")
		failed = true
	}

	if failed {
		e.setStatus(models.SyncError)
		return
	}
	e.setStatus(models.SyncSynced)
}

// pushDirtyNotes uploads every dirty record. A failing record does not block
// the rest; the first error is reported after all records were attempted.
func (e *Engine) pushDirtyNotes(ctx context.Context) error {
	dirty, err := e.notes.GetDirty(ctx)
	if err != nil {
		return fmt.Errorf("load dirty notes: %w", err)
	}

	var firstErr error
	for _, rec := range dirty {
		if err := e.pushNote(ctx, rec); err != nil {
			e.log.Err(err).Str("date", string(rec.Date)).Msg("error pushing note")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// pushNote uploads one dirty record, handling at most one conflict rebase.
// The expected revision sent with the write is the one below the local
// revision: exactly the state the backend acknowledged last.
func (e *Engine) pushNote(ctx context.Context, rec models.LocalNoteRecord) error {
	accepted, err := e.server.UpsertNote(ctx, remoteFromLocal(rec), rec.Revision-1)
	if err == nil {
		return e.acceptPush(ctx, rec, accepted)
	}
	if !errors.Is(err, adapter.ErrRevisionConflict) {
		return fmt.Errorf("upsert note: %w", err)
	}

	remote, err := e.server.GetNote(ctx, rec.Date)
	if err != nil {
		return fmt.Errorf("fetch conflicting note: %w", err)
	}

	if ResolveConflict(rec, remote) == WinnerRemote {
		return e.adoptRemote(ctx, remote)
	}

	// Local wins: rebase on top of the remote revision and retry once. A
	// second conflict means the backend moved again mid-sync; take the
	// remote state and let the next pass settle it.
	rebased := rec
	rebased.Revision = maxInt64(rec.Revision, remote.Revision) + 1

	accepted, err = e.server.UpsertNote(ctx, remoteFromLocal(rebased), remote.Revision)
	if err == nil {
		return e.acceptPush(ctx, rebased, accepted)
	}
	if !errors.Is(err, adapter.ErrRevisionConflict) {
		return fmt.Errorf("upsert rebased note: %w", err)
	}

	remote, err = e.server.GetNote(ctx, rec.Date)
	if err != nil {
		return fmt.Errorf("fetch note after second conflict: %w", err)
	}
	return e.adoptRemote(ctx, remote)
}

// acceptPush writes the backend's accepted state over the local record. An
// acknowledged tombstone is removed physically; nothing references it again.
func (e *Engine) acceptPush(ctx context.Context, rec models.LocalNoteRecord, accepted models.RemoteNote) error {
	if rec.Deleted {
		if err := e.notes.Delete(ctx, rec.Date); err != nil {
			return fmt.Errorf("drop acknowledged tombstone: %w", err)
		}
		return nil
	}

	rec.RemoteID = accepted.ID
	rec.Revision = accepted.Revision
	rec.ServerUpdatedAt = accepted.ServerUpdatedAt
	rec.Dirty = false

	if err := e.notes.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist acknowledged note: %w", err)
	}
	return nil
}

// adoptRemote replaces the local record with the remote state. Ciphertext is
// stored as-is: the engine never decrypts.
func (e *Engine) adoptRemote(ctx context.Context, remote models.RemoteNote) error {
	if remote.Deleted {
		if err := e.notes.Delete(ctx, remote.Date); err != nil {
			return fmt.Errorf("apply remote deletion: %w", err)
		}
		return nil
	}

	rec := models.LocalNoteRecord{
		Date:            remote.Date,
		RemoteID:        remote.ID,
		Nonce:           remote.Nonce,
		Ciphertext:      remote.Ciphertext,
		KeyID:           remote.KeyID,
		Revision:        remote.Revision,
		UpdatedAt:       remote.UpdatedAt,
		ServerUpdatedAt: remote.ServerUpdatedAt,
		Deleted:         false,
		Dirty:           false,
	}

	if err := e.notes.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist adopted note: %w", err)
	}
	return nil
}

// pullRemoteChanges applies the backend's change feed since the persisted
// cursor. Dirty local records are skipped: their fate is decided by the push
// path of this or the next pass. Clean records adopt a feed entry only when
// the conflict rule says it supersedes them, so a stale feed entry cannot
// regress a record the push path just reconciled. The cursor advances only
// after the whole page applied cleanly.
func (e *Engine) pullRemoteChanges(ctx context.Context) error {
	state, err := e.syncState.GetSyncState(ctx)
	if err != nil {
		return fmt.Errorf("load sync cursor: %w", err)
	}

	remotes, next, err := e.server.GetNotesSince(ctx, state.Cursor)
	if err != nil {
		return fmt.Errorf("fetch remote changes: %w", err)
	}

	for _, remote := range remotes {
		local, err := e.notes.Get(ctx, remote.Date)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("load local note %s: %w", remote.Date, err)
			}
			if err := e.adoptRemote(ctx, remote); err != nil {
				return err
			}
			continue
		}

		if local.Dirty {
			continue
		}
		if ResolveConflict(local, remote) == WinnerLocal {
			continue
		}

		if err := e.adoptRemote(ctx, remote); err != nil {
			return err
		}
	}

	if next != "" {
		if err := e.syncState.SetSyncState(ctx, models.SyncState{Cursor: &next}); err != nil {
			return fmt.Errorf("advance sync cursor: %w", err)
		}
	}
	return nil
}

func (e *Engine) setStatus(status models.SyncStatus) {
	e.mu.Lock()
	if e.status == status {
		e.mu.Unlock()
		return
	}
	e.status = status
	snapshot := make([]StatusListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		snapshot = append(snapshot, l)
	}
	e.mu.Unlock()

	for _, l := range snapshot {
		l(status)
	}
}

func remoteFromLocal(rec models.LocalNoteRecord) models.RemoteNote {
	return models.RemoteNote{
		ID:         rec.RemoteID,
		Date:       rec.Date,
		Ciphertext: rec.Ciphertext,
		Nonce:      rec.Nonce,
		KeyID:      rec.KeyID,
		Revision:   rec.Revision,
		UpdatedAt:  rec.UpdatedAt,
		Deleted:    rec.Deleted,
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
