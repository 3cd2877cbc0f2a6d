// Package http is the local control API: the surface the UI front-ends
// talk to. It writes through the entity store (mutations always land
// pending), exposes the status projection as a snapshot and as an SSE
// stream, and forwards manual sync and upload commands.
//
// The listener is meant to stay on loopback; there is no authentication
// on this surface.
package http

import (
	"context"

	"github.com/glideapp/glide-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../../mock/handler_mock.go -package=mock

// Syncer is the orchestrator surface the control API needs: requesting a
// pass. Everything else is read through the projection.
type Syncer interface {
	Trigger()
}

// StatusSource serves projection snapshots and the event stream.
type StatusSource interface {
	Snapshot(ctx context.Context) (models.StatusSnapshot, error)
	Subscribe() (<-chan models.StatusSnapshot, func())
	Notify()
}
