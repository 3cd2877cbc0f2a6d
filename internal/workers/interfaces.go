// Package workers provides the bounded worker pool used by the sync
// orchestrator. It wraps errgroup with a concurrency limit and optional
// per-key serialization.
//
// Jobs submitted through Go run as soon as a slot frees up; GoKeyed adds
// mutual exclusion between jobs carrying the same key. The pool context is
// cancelled by the first job error, which lets one failing operation abort
// the rest of a pass.
package workers

import "context"

// Runner is the submission surface of a Pool.
type Runner interface {
	Go(fn func(ctx context.Context) error)
	GoKeyed(key string, fn func(ctx context.Context) error)
	Wait() error
}
