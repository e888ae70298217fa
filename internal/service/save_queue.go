// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/models"
)

// SaveQueue coalesces rapid edits to the same note into one store write per
// quiet period. Each date debounces independently; edits to different dates
// never delay each other. Per date, writes reach the repository in order
// because only the newest pending content survives.
type SaveQueue struct {
	repo     NoteRepository
	clock    Clock
	debounce time.Duration
	onSaved  func()
	log      *logger.Logger

	mu      sync.Mutex
	pending map[models.DateKey]*pendingSave
	closed  bool
}

type pendingSave struct {
	content string
	timer   Timer
}

// NewSaveQueue builds a queue over repo. onSaved runs after every flushed
// write (the sync engine hooks its change notification there); nil is allowed.
func NewSaveQueue(repo NoteRepository, clock Clock, debounce time.Duration, onSaved func(), log *logger.Logger) *SaveQueue {
	if onSaved == nil {
		onSaved = func() {}
	}
	return &SaveQueue{
		repo:     repo,
		clock:    clock,
		debounce: debounce,
		onSaved:  onSaved,
		log:      log,
		pending:  make(map[models.DateKey]*pendingSave),
	}
}

// Enqueue records content as the newest state of date's note and (re)starts
// its debounce window.
func (q *SaveQueue) Enqueue(date models.DateKey, content string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	if p, ok := q.pending[date]; ok {
		p.content = content
		p.timer.Reset(q.debounce)
		return
	}

	p := &pendingSave{content: content}
	p.timer = q.clock.AfterFunc(q.debounce, func() { q.flushExpired(date) })
	q.pending[date] = p
}

// Flush writes date's pending content immediately, cancelling its timer.
// No-op when nothing is pending.
func (q *SaveQueue) Flush(ctx context.Context, date models.DateKey) error {
	q.mu.Lock()
	p, ok := q.pending[date]
	if !ok {
		q.mu.Unlock()
		return nil
	}
	p.timer.Stop()
	delete(q.pending, date)
	content := p.content
	q.mu.Unlock()

	return q.save(ctx, date, content)
}

// FlushAll writes every pending note. Used on shutdown and before a manual
// sync so the push sees the latest edits.
func (q *SaveQueue) FlushAll(ctx context.Context) error {
	q.mu.Lock()
	drained := q.pending
	q.pending = make(map[models.DateKey]*pendingSave)
	for _, p := range drained {
		p.timer.Stop()
	}
	q.mu.Unlock()

	var firstErr error
	for date, p := range drained {
		if err := q.save(ctx, date, p.content); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close stops all timers and flushes remaining edits.
func (q *SaveQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	if err := q.FlushAll(context.Background()); err != nil {
		q.log.Err(err).Msg("error flushing save queue on close")
	}
}

func (q *SaveQueue) flushExpired(date models.DateKey) {
	q.mu.Lock()
	p, ok := q.pending[date]
	if !ok {
		// Flushed explicitly before the timer fired.
		q.mu.Unlock()
		return
	}
	delete(q.pending, date)
	content := p.content
	q.mu.Unlock()

	if err := q.save(context.Background(), date, content); err != nil {
		q.log.Err(err).Str("date", string(date)).Msg("error saving debounced note")
	}
}

func (q *SaveQueue) save(ctx context.Context, date models.DateKey, content string) error {
	if err := q.repo.Save(ctx, date, content); err != nil {
		return err
	}
	q.onSaved()
	return nil
}
