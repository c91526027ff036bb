// redis.go -- go-redis backed rate-limit counter store.
//
// Counters live in Redis so that every server instance enforces the same
// quota -- the increment must be atomic across processes, which rules out
// in-process locking. A Lua script gives the read-increment-write a single
// serialization point per key.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and returns a shared client.
// It pings Redis to verify connectivity before returning.
// Call once at startup from main.go; the client is safe for concurrent use.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	// Parse redisURL to get option values, if err return it
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	// Create new redis client
	rdb := redis.NewClient(opt)

	// Try and test client to ensure it works correctly
	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

// incrementIfBelow increments the counter at KEYS[1] only when the result
// would stay at or under ARGV[1]. Returns the new count, or 0 when rejected.
// Rejected calls leave the stored count untouched -- the whole check-and-set
// runs atomically inside Redis, so concurrent callers can never overshoot.
var incrementIfBelow = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count + 1 > tonumber(ARGV[1]) then
	return 0
end
return redis.call('INCR', KEYS[1])
`)

// RedisCounterStore implements ratelimit.CounterStore on a shared Redis
// instance. Keys are rl:<subject>:<bucket>; no TTL is set -- retention is
// the sweep's job, mirroring how the durable store has no expiry either.
type RedisCounterStore struct {
	rdb *redis.Client
}

// NewRedisCounterStore wraps an already-connected client.
func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb}
}

// counterKey builds the per-(subject, bucket) key.
func counterKey(subject string, bucket int64) string {
	return fmt.Sprintf("rl:%s:%d", subject, bucket)
}

// IncrementIfBelow atomically increments the (subject, bucket) counter unless
// the post-increment count would exceed ceiling. Returns whether the
// increment was accepted.
func (s *RedisCounterStore) IncrementIfBelow(ctx context.Context, subject string, bucket int64, ceiling int) (bool, error) {
	n, err := incrementIfBelow.Run(ctx, s.rdb, []string{counterKey(subject, bucket)}, ceiling).Int64()
	if err != nil {
		return false, fmt.Errorf("incrementing rate counter: %w", err)
	}
	return n > 0, nil
}

// PurgeBefore deletes every counter whose bucket predates cutoffBucket and
// returns the number deleted. Scans incrementally and deletes in pipelined
// batches so large backlogs don't block Redis. Safe to run repeatedly --
// a second pass over a purged range deletes nothing.
func (s *RedisCounterStore) PurgeBefore(ctx context.Context, cutoffBucket int64) (int, error) {
	const batchSize = 500

	deleted := 0
	var stale []string

	flush := func() error {
		if len(stale) == 0 {
			return nil
		}
		pipe := s.rdb.TxPipeline()
		for _, key := range stale {
			pipe.Del(ctx, key)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("deleting stale counters: %w", err)
		}
		deleted += len(stale)
		stale = stale[:0]
		return nil
	}

	iter := s.rdb.Scan(ctx, 0, "rl:*", batchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		// Bucket is everything after the last colon; subjects may contain
		// colons themselves.
		idx := strings.LastIndex(key, ":")
		if idx < 0 {
			continue
		}
		bucket, err := strconv.ParseInt(key[idx+1:], 10, 64)
		if err != nil {
			continue
		}
		if bucket < cutoffBucket {
			stale = append(stale, key)
			if len(stale) >= batchSize {
				if err := flush(); err != nil {
					return deleted, err
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scanning rate counters: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}

	return deleted, nil
}
