package status

import (
	"context"
	"reflect"
	"sync"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/models"
)

type Projection struct {
	entities Entities
	queue    Uploads
	engine   Engine
	network  Connectivity
	logger   *logger.Logger

	// changeCh has capacity one; bursts of notifications collapse into a
	// single recomputation.
	changeCh chan struct{}

	mu   sync.Mutex
	last *models.StatusSnapshot
	subs map[chan models.StatusSnapshot]struct{}
}

func NewProjection(entities Entities, queue Uploads, engine Engine, network Connectivity, log *logger.Logger) *Projection {
	return &Projection{
		entities: entities,
		queue:    queue,
		engine:   engine,
		network:  network,
		logger:   log,
		changeCh: make(chan struct{}, 1),
		subs:     make(map[chan models.StatusSnapshot]struct{}),
	}
}

// Notify signals that something relevant changed. Non-blocking.
func (p *Projection) Notify() {
	select {
	case p.changeCh <- struct{}{}:
	default:
	}
}

// Subscribe registers a snapshot listener. Slow subscribers observe the
// latest snapshot, not every intermediate one. The second return value
// unsubscribes.
func (p *Projection) Subscribe() (<-chan models.StatusSnapshot, func()) {
	ch := make(chan models.StatusSnapshot, 4)

	p.mu.Lock()
	p.subs[ch] = struct{}{}
	last := p.last
	p.mu.Unlock()

	// A new subscriber starts from the current view.
	if last != nil {
		ch <- *last
	}

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, ch)
	}
	return ch, cancel
}

// Snapshot computes the current read model.
func (p *Projection) Snapshot(ctx context.Context) (models.StatusSnapshot, error) {
	counts, err := p.entities.Counts(ctx)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	pendingBytes, err := p.queue.TotalPendingBytes(ctx)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	pendingUploads, err := p.queue.CountPending(ctx)
	if err != nil {
		return models.StatusSnapshot{}, err
	}

	online := p.network.Online()
	state := p.engine.State()
	if state != models.SyncSyncing && !online {
		state = models.SyncOffline
	}

	return models.StatusSnapshot{
		State:               state,
		Online:              online,
		PendingChangesCount: counts.PendingChanges,
		ConflictCount:       counts.Conflicts,
		PendingUploadsCount: pendingUploads,
		PendingUploadsBytes: pendingBytes,
		Progress:            p.engine.Progress(),
		LastSyncAt:          p.engine.LastSyncAt(),
		LastSyncError:       p.engine.LastSyncError(),
	}, nil
}

// Run recomputes on change notifications and broadcasts snapshots that
// actually differ from the previous one.
func (p *Projection) Run(ctx context.Context) error {
	log := p.logger.GetChildLogger()

	p.recompute(ctx, log)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.changeCh:
			p.recompute(ctx, log)
		}
	}
}

func (p *Projection) recompute(ctx context.Context, log *logger.Logger) {
	snapshot, err := p.Snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Str("func", "status.recompute").Msg("cannot compute status snapshot")
		}
		return
	}

	p.mu.Lock()
	if p.last != nil && reflect.DeepEqual(*p.last, snapshot) {
		p.mu.Unlock()
		return
	}
	p.last = &snapshot

	subs := make([]chan models.StatusSnapshot, 0, len(p.subs))
	for ch := range p.subs {
		subs = append(subs, ch)
	}
	p.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
			// Full buffer: evict the oldest snapshot in favor of this one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
