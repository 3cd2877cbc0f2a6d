// Package netmon tracks remote reachability.
//
// The monitor probes the API health endpoint on an interval and keeps a
// single online/offline flag. Subscribers receive exactly one event per
// actual transition; repeated probe results on the same side of the edge
// are suppressed. Collaborators that just observed a definitive request
// outcome can feed it back through Report to flip the state without
// waiting for the next probe.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
)

// Prober is the reachability check, satisfied by the API adapter.
type Prober interface {
	Health(ctx context.Context) error
}

// Event is one online/offline transition.
type Event struct {
	Online bool
	At     time.Time
}

type Monitor struct {
	prober Prober
	cfg    config.Netmon
	logger *logger.Logger

	mu     sync.Mutex
	online bool
	known  bool
	subs   map[chan Event]struct{}

	checkCh chan struct{}
	now     func() time.Time
}

func NewMonitor(prober Prober, cfg config.Netmon, log *logger.Logger) *Monitor {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Monitor{
		prober:  prober,
		cfg:     cfg,
		logger:  log,
		subs:    make(map[chan Event]struct{}),
		checkCh: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Online reports the last known reachability. False until the first
// successful probe.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.known && m.online
}

// Subscribe registers a transition listener. The returned channel is
// buffered; when a subscriber lags, older transitions are dropped in favor
// of the most recent one. The second return value unsubscribes.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 4)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, ch)
	}
	return ch, cancel
}

// Report feeds back the outcome of a real API call. A definitive success
// or failure observed by a collaborator flips the state immediately
// instead of waiting out the probe interval.
func (m *Monitor) Report(online bool) {
	m.setOnline(online)
}

// ForceCheck schedules an immediate probe. Non-blocking; a probe already
// scheduled absorbs the request.
func (m *Monitor) ForceCheck() {
	select {
	case m.checkCh <- struct{}{}:
	default:
	}
}

// Run probes until ctx is cancelled. The first probe fires immediately so
// the daemon knows its connectivity at startup.
func (m *Monitor) Run(ctx context.Context) error {
	log := m.logger.GetChildLogger()

	m.probe(ctx)

	t := time.NewTicker(m.cfg.ProbeInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("func", "netmon.Run").Msg("network monitor stopped")
			return ctx.Err()
		case <-t.C:
			m.probe(ctx)
		case <-m.checkCh:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	err := m.prober.Health(probeCtx)
	if ctx.Err() != nil {
		return
	}
	m.setOnline(err == nil)
}

// setOnline records the probe outcome and broadcasts when the state
// actually changed.
func (m *Monitor) setOnline(online bool) {
	m.mu.Lock()

	if m.known && m.online == online {
		m.mu.Unlock()
		return
	}
	m.known = true
	m.online = online

	ev := Event{Online: online, At: m.now()}
	subs := make([]chan Event, 0, len(m.subs))
	for ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	m.logger.Info().Str("func", "netmon.setOnline").Bool("online", online).Msg("connectivity changed")

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Full buffer: evict the oldest queued transition.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
