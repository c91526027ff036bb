// Package ratelimit enforces a per-subject request quota over fixed time
// buckets. The counter itself lives in a CounterStore so the enforcement
// works across server instances; the limiter only does the bucket math and
// policy decision.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded is returned by Allow when the subject's bucket is full.
// Callers use errors.Is to distinguish quota rejections from store failures.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// CounterStore is the narrow atomic-counter contract the limiter needs.
// Implementations: *store.RedisCounterStore (shared, cross-process) and
// *MemoryCounterStore (single process, tests).
type CounterStore interface {
	// IncrementIfBelow atomically increments the (subject, bucket) counter
	// unless the post-increment count would exceed ceiling. A rejected
	// increment must leave the stored count unchanged.
	IncrementIfBelow(ctx context.Context, subject string, bucket int64, ceiling int) (bool, error)

	// PurgeBefore deletes all counters with bucket < cutoffBucket and
	// returns the number deleted. Must be idempotent.
	PurgeBefore(ctx context.Context, cutoffBucket int64) (int, error)
}

// Limiter applies a fixed ceiling per subject per window.
type Limiter struct {
	counters CounterStore
	ceiling  int
	window   time.Duration
}

// New returns a Limiter allowing ceiling requests per subject per window.
func New(counters CounterStore, ceiling int, window time.Duration) *Limiter {
	return &Limiter{counters: counters, ceiling: ceiling, window: window}
}

// bucketOf maps an instant to its window-aligned bucket number.
func (l *Limiter) bucketOf(t time.Time) int64 {
	return t.UnixMilli() / l.window.Milliseconds()
}

// Allow records one request for subject at time now.
// Returns nil when the request fits the quota, ErrLimitExceeded when the
// bucket is full, and a wrapped store error on infrastructure failure --
// callers must not conflate the latter two.
func (l *Limiter) Allow(ctx context.Context, subject string, now time.Time) error {
	accepted, err := l.counters.IncrementIfBelow(ctx, subject, l.bucketOf(now), l.ceiling)
	if err != nil {
		return fmt.Errorf("rate counter increment: %w", err)
	}
	if !accepted {
		return ErrLimitExceeded
	}
	return nil
}

// Sweep deletes all counters whose bucket started before cutoff and returns
// the number removed. Invoked periodically from main; it has no HTTP caller,
// so failures are the invoker's to log.
func (l *Limiter) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	return l.counters.PurgeBefore(ctx, l.bucketOf(cutoff))
}
