package workers

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool runs submitted jobs concurrently, never more than limit at once.
// Jobs sharing a key are additionally serialized against each other, so
// operations on the same entity never race while distinct entities
// parallelize freely.
type Pool struct {
	group *errgroup.Group
	ctx   context.Context

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// NewPool creates a pool bound to ctx. The first job error cancels the
// pool context; remaining jobs observe the cancellation through their ctx.
func NewPool(ctx context.Context, limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	return &Pool{
		group: group,
		ctx:   groupCtx,
		keys:  make(map[string]*sync.Mutex),
	}
}

// Go submits a job.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.group.Go(func() error {
		return fn(p.ctx)
	})
}

// GoKeyed submits a job serialized per key.
func (p *Pool) GoKeyed(key string, fn func(ctx context.Context) error) {
	lock := p.keyLock(key)
	p.group.Go(func() error {
		lock.Lock()
		defer lock.Unlock()
		return fn(p.ctx)
	})
}

// Wait blocks until every submitted job returned and reports the first
// error, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}

func (p *Pool) keyLock(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.keys[key]
	if !ok {
		lock = &sync.Mutex{}
		p.keys[key] = lock
	}
	return lock
}
