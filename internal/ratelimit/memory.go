package ratelimit

import (
	"context"
	"sync"
)

// bucketKey identifies one counter: a subject within one time bucket.
type bucketKey struct {
	subject string
	bucket  int64
}

// MemoryCounterStore is a mutex-guarded in-process CounterStore.
// Suitable for single-instance deployments and tests; it provides the same
// atomicity guarantee as the Redis store, just without cross-process reach.
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[bucketKey]int
}

// NewMemoryCounterStore returns an empty in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counts: make(map[bucketKey]int)}
}

// IncrementIfBelow increments the counter unless that would exceed ceiling.
func (m *MemoryCounterStore) IncrementIfBelow(_ context.Context, subject string, bucket int64, ceiling int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := bucketKey{subject, bucket}
	if m.counts[key]+1 > ceiling {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}

// PurgeBefore deletes all counters with bucket < cutoffBucket.
func (m *MemoryCounterStore) PurgeBefore(_ context.Context, cutoffBucket int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key := range m.counts {
		if key.bucket < cutoffBucket {
			delete(m.counts, key)
			deleted++
		}
	}
	return deleted, nil
}

// Count reports the stored count for a (subject, bucket) pair.
// Test observability only.
func (m *MemoryCounterStore) Count(subject string, bucket int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[bucketKey{subject, bucket}]
}
