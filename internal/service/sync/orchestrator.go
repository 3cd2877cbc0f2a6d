package sync

import (
	"context"
	"sync"
	"time"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/backoff"
	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/service/uploads"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/models"
)

type Orchestrator struct {
	entities store.EntityRepository
	queue    uploads.Queue
	api      adapter.APIClient
	network  Network
	cfg      config.Sync
	policy   backoff.Policy
	logger   *logger.Logger

	// trigger has capacity one: a trigger landing while a pass runs is
	// "one more pass owed", any further triggers coalesce into it.
	trigger chan struct{}

	mu          sync.Mutex
	state       models.SyncState
	progress    *models.SyncProgress
	lastSyncAt  *time.Time
	lastSyncErr string
	authPaused  bool
	onChange    func()

	now func() time.Time
}

func NewOrchestrator(entities store.EntityRepository, queue uploads.Queue, api adapter.APIClient, network Network, cfg config.Sync, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		entities: entities,
		queue:    queue,
		api:      api,
		network:  network,
		cfg:      cfg,
		policy:   backoff.Policy{Base: cfg.BackoffBase, Cap: cfg.BackoffCap},
		logger:   log,
		trigger:  make(chan struct{}, 1),
		state:    models.SyncIdle,
		now:      time.Now,
	}
}

// SetOnChange registers a hook called whenever the orchestrator's visible
// state changes; the status projection hangs off it.
func (o *Orchestrator) SetOnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
}

// Trigger requests a sync pass. Non-blocking; a pass already owed absorbs
// the request.
func (o *Orchestrator) Trigger() {
	select {
	case o.trigger <- struct{}{}:
	default:
	}
}

// State reports idle or syncing. Offline presentation is the projection's
// concern.
func (o *Orchestrator) State() models.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Progress returns a copy of the running pass's progress, or nil when idle.
func (o *Orchestrator) Progress() *models.SyncProgress {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil {
		return nil
	}
	p := *o.progress
	return &p
}

func (o *Orchestrator) LastSyncAt() *time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lastSyncAt == nil {
		return nil
	}
	t := *o.lastSyncAt
	return &t
}

func (o *Orchestrator) LastSyncError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSyncErr
}

// Run reacts to triggers until ctx is cancelled. The periodic timer only
// fires a pass while online and not paused by an auth rejection; an
// explicit trigger always attempts (it is how the user retries after
// fixing the token).
func (o *Orchestrator) Run(ctx context.Context) error {
	log := o.logger.GetChildLogger()

	events, unsubscribe := o.network.Subscribe()
	defer unsubscribe()

	t := time.NewTicker(o.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("func", "sync.Run").Msg("orchestrator stopped")
			return ctx.Err()

		case ev := <-events:
			if ev.Online {
				log.Info().Str("func", "sync.Run").Msg("connectivity restored, starting pass")
				o.runPass(ctx)
			} else {
				o.notifyChange()
			}

		case <-o.trigger:
			o.runPass(ctx)

		case <-t.C:
			if o.network.Online() && !o.isAuthPaused() {
				o.runPass(ctx)
			}
		}
	}
}

func (o *Orchestrator) isAuthPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.authPaused
}

func (o *Orchestrator) pauseAuth(err error) {
	o.mu.Lock()
	o.authPaused = true
	o.mu.Unlock()
	o.logger.Warn().Err(err).Str("func", "sync.pauseAuth").
		Msg("token rejected, periodic sync paused until it changes")
}

func (o *Orchestrator) setState(state models.SyncState) {
	o.mu.Lock()
	o.state = state
	if state != models.SyncSyncing {
		o.progress = nil
	}
	o.mu.Unlock()
	o.notifyChange()
}

func (o *Orchestrator) startProgress(total int) {
	o.mu.Lock()
	o.progress = &models.SyncProgress{Total: total}
	o.mu.Unlock()
	o.notifyChange()
}

func (o *Orchestrator) noteOperation(label string) {
	o.mu.Lock()
	if o.progress != nil {
		o.progress.CurrentOperation = label
	}
	o.mu.Unlock()
	o.notifyChange()
}

func (o *Orchestrator) advanceProgress() {
	o.mu.Lock()
	if o.progress != nil {
		o.progress.Processed++
	}
	o.mu.Unlock()
	o.notifyChange()
}

func (o *Orchestrator) finishPass(err error) {
	now := o.now()
	o.mu.Lock()
	o.lastSyncAt = &now
	if err != nil {
		o.lastSyncErr = err.Error()
	} else {
		o.lastSyncErr = ""
	}
	o.mu.Unlock()
}

func (o *Orchestrator) notifyChange() {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn()
	}
}
