// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Kondratev

package service

import "github.com/mkondratev/daynotes/models"

// ConflictWinner identifies which side a conflict resolved to.
type ConflictWinner int

const (
	// WinnerLocal means the local record supersedes the remote one.
	WinnerLocal ConflictWinner = iota
	// WinnerRemote means the remote record supersedes the local one.
	WinnerRemote
)

// ResolveConflict decides between a dirty local record and the remote record
// that rejected its push. Strictly later content timestamp wins; on equal
// timestamps the higher revision wins; a full tie resolves to remote so that
// every device independently reaches the same state.
func ResolveConflict(local models.LocalNoteRecord, remote models.RemoteNote) ConflictWinner {
	if local.UpdatedAt.After(remote.UpdatedAt) {
		return WinnerLocal
	}
	if remote.UpdatedAt.After(local.UpdatedAt) {
		return WinnerRemote
	}

	if local.Revision > remote.Revision {
		return WinnerLocal
	}
	return WinnerRemote
}
