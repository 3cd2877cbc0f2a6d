// Package sync contains the orchestrator: the state machine that drains
// pending local mutations and pending uploads against the remote API.
//
// Exactly one pass runs at a time. Triggers (connectivity edge, manual
// refresh, periodic timer, local mutation) arriving during a pass coalesce
// into one more pass owed. Within a pass, independent entities and uploads
// are pushed concurrently through a bounded worker pool; operations on the
// same entity stay serialized.
package sync

import "github.com/glideapp/glide-sync/internal/service/netmon"

//go:generate mockgen -source=interfaces.go -destination=../../mock/sync_mock.go -package=mock

// Network is the connectivity view the orchestrator consumes, satisfied by
// *netmon.Monitor.
type Network interface {
	Online() bool
	Subscribe() (<-chan netmon.Event, func())
	Report(online bool)
	ForceCheck()
}
