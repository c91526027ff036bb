// Package cache provides the bounded, expiring cache for guitar search
// results. It is an explicitly-owned component injected into the search
// handler -- capacity and TTL are constructor parameters, not globals.
//
// The cache is process-local by design: staleness up to the TTL is accepted,
// and instances do not coordinate.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ddanglyx/finalweb/internal/store"
)

// SearchCache maps normalized search terms to their last-known catalog
// matches. Entries expire after the TTL and the least-recently-used entry is
// evicted once capacity is reached. Safe for concurrent use.
type SearchCache struct {
	lru *expirable.LRU[string, []store.Guitar]
}

// NewSearchCache returns a cache holding at most capacity entries, each
// valid for ttl after insertion.
func NewSearchCache(capacity int, ttl time.Duration) *SearchCache {
	return &SearchCache{
		lru: expirable.NewLRU[string, []store.Guitar](capacity, nil, ttl),
	}
}

// normalize folds a search term into its cache key.
// Case-insensitive so "Stratocaster" and "stratocaster" share an entry.
func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Get returns the cached matches for term, if present and unexpired.
func (c *SearchCache) Get(term string) ([]store.Guitar, bool) {
	return c.lru.Get(normalize(term))
}

// Set stores the matches for term. An empty match list is cached too --
// repeated misses for an unknown name should not hit the database every time.
func (c *SearchCache) Set(term string, items []store.Guitar) {
	c.lru.Add(normalize(term), items)
}

// Len reports the number of live entries. Test observability only.
func (c *SearchCache) Len() int {
	return c.lru.Len()
}
