// Package backoff computes retry delays for failed sync attempts.
//
// Delays grow exponentially from a base, capped, and are strictly
// non-decreasing in the attempt number. Eligibility checks use the
// deterministic delay; Jittered spreads actual wake-ups so retries from
// many items do not align on the same instant.
package backoff

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy is an exponential backoff: Base doubles per failed attempt up to
// Cap.
type Policy struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns the wait required after the given number of consecutive
// failed attempts. Zero attempts means no wait.
func (p Policy) Delay(attempts int) time.Duration {
	if attempts <= 0 || p.Base <= 0 {
		return 0
	}
	return p.step(retry.WithCappedDuration(p.Cap, retry.NewExponential(p.Base)), attempts)
}

// Jittered is Delay with up to 20% random spread, for actual sleeps.
func (p Policy) Jittered(attempts int) time.Duration {
	if attempts <= 0 || p.Base <= 0 {
		return 0
	}
	return p.step(retry.WithJitterPercent(20,
		retry.WithCappedDuration(p.Cap, retry.NewExponential(p.Base))), attempts)
}

// Eligible reports whether an item with the given attempt count and last
// attempt time has cleared its backoff window at now.
func (p Policy) Eligible(attempts int, lastAttempt *time.Time, now time.Time) bool {
	if attempts <= 0 || lastAttempt == nil {
		return true
	}
	return now.Sub(*lastAttempt) >= p.Delay(attempts)
}

func (p Policy) step(b retry.Backoff, attempts int) time.Duration {
	var d time.Duration
	for i := 0; i < attempts; i++ {
		next, stopped := b.Next()
		if stopped {
			break
		}
		d = next
	}
	return d
}
