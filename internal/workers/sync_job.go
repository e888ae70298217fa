// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package workers

import (
	"context"
	"sync"
	"time"
)

// SyncTrigger is the slice of the sync engine the job needs.
type SyncTrigger interface {
	SyncNow()
}

type syncJob struct {
	engine SyncTrigger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a job that triggers a sync pass on a ticker, catching
// changes that arrived on other devices between local edits. Idle until
// Start.
func NewSyncJob(engine SyncTrigger) Job {
	return &syncJob{engine: engine}
}

// Start stops any previous run, then fires engine.SyncNow every interval
// until ctx is cancelled or Stop is called. Non-positive intervals default to
// 5 minutes.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.engine.SyncNow()
			}
		}
	}()
}

// Stop cancels the ticker goroutine and blocks until it has exited.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
