package models

// SyncStatus is the externally observable state of the sync engine.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncOffline SyncStatus = "offline"
	SyncError   SyncStatus = "error"
)

// SyncState is the single persisted record holding the last-seen remote
// change cursor. A nil cursor means no pull has completed yet.
type SyncState struct {
	Cursor *string `json:"cursor"`
}

// PendingOpsSummary counts local changes still owed to the backend.
type PendingOpsSummary struct {
	Notes  int `json:"notes"`
	Images int `json:"images"`
}

// Total returns the combined number of pending note and image operations.
func (s PendingOpsSummary) Total() int {
	return s.Notes + s.Images
}
