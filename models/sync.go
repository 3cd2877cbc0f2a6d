package models

import "time"

// SyncState is the orchestrator's externally visible state.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncOffline SyncState = "offline"
)

// SyncProgress tracks one running pass. Ephemeral, never persisted.
type SyncProgress struct {
	Processed        int    `json:"processed"`
	Total            int    `json:"total"`
	CurrentOperation string `json:"current_operation,omitempty"`
}

// StatusSnapshot is the read model the UI consumes. Derived from the
// store and the upload queue on every relevant change, never a source
// of truth itself.
type StatusSnapshot struct {
	State               SyncState     `json:"state"`
	Online              bool          `json:"online"`
	PendingChangesCount int           `json:"pending_changes_count"`
	ConflictCount       int           `json:"conflict_count"`
	PendingUploadsCount int           `json:"pending_uploads_count"`
	PendingUploadsBytes int64         `json:"pending_uploads_bytes"`
	Progress            *SyncProgress `json:"progress,omitempty"`
	LastSyncAt          *time.Time    `json:"last_sync_at,omitempty"`
	LastSyncError       string        `json:"last_sync_error,omitempty"`
}
