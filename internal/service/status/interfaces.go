// Package status derives the read model the UI consumes: counts, progress
// and a human-readable sync state, recomputed from the store and the queue
// on every relevant change and pushed to subscribers. The projection is
// never a source of truth.
package status

import (
	"context"
	"time"

	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../../mock/status_mock.go -package=mock

// Entities is the slice of the entity store the projection reads.
type Entities interface {
	Counts(ctx context.Context) (store.SyncCounts, error)
}

// Uploads is the slice of the upload queue the projection reads.
type Uploads interface {
	TotalPendingBytes(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int, error)
}

// Engine is the orchestrator surface the projection reads.
type Engine interface {
	State() models.SyncState
	Progress() *models.SyncProgress
	LastSyncAt() *time.Time
	LastSyncError() string
}

// Connectivity reports the network view for the offline presentation.
type Connectivity interface {
	Online() bool
}
