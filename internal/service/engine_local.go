// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import (
	"context"

	"github.com/mkondratev/daynotes/models"
)

// localEngine is the SyncEngine used when no backend is configured. All
// triggers are no-ops and the status is permanently idle, so frontends can
// treat local-only and cloud profiles uniformly.
type localEngine struct{}

// NewLocalEngine returns the no-op engine for local-only profiles.
func NewLocalEngine() SyncEngine {
	return localEngine{}
}

func (localEngine) Status() models.SyncStatus { return models.SyncIdle }

func (localEngine) Subscribe(l StatusListener) func() {
	l(models.SyncIdle)
	return func() {}
}

func (localEngine) NotifyChange() {}

func (localEngine) SyncNow() {}

func (localEngine) SetOnline(bool) {}

func (localEngine) PendingOps(context.Context) (models.PendingOpsSummary, error) {
	return models.PendingOpsSummary{}, nil
}

func (localEngine) Close() {}
