package cache

import (
	"testing"
	"time"

	"github.com/ddanglyx/finalweb/internal/store"
)

func TestSearchCache(t *testing.T) {
	strat := []store.Guitar{{Name: "Stratocaster"}}
	tele := []store.Guitar{{Name: "Telecaster"}}

	t.Run("round-trip stores and retrieves items", func(t *testing.T) {
		c := NewSearchCache(10, time.Minute)
		c.Set("Stratocaster", strat)

		got, ok := c.Get("Stratocaster")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if len(got) != 1 || got[0].Name != "Stratocaster" {
			t.Errorf("items: expected Stratocaster, got %v", got)
		}
	})

	t.Run("keys are case-insensitive and trimmed", func(t *testing.T) {
		c := NewSearchCache(10, time.Minute)
		c.Set("Stratocaster", strat)

		if _, ok := c.Get("  sTRATOCASTER "); !ok {
			t.Error("expected hit for case/whitespace variant of the same term")
		}
	})

	t.Run("miss on unknown term", func(t *testing.T) {
		c := NewSearchCache(10, time.Minute)

		if _, ok := c.Get("Jazzmaster"); ok {
			t.Error("expected miss for term never stored")
		}
	})

	t.Run("empty match list is cached", func(t *testing.T) {
		c := NewSearchCache(10, time.Minute)
		c.Set("Nonexistent", []store.Guitar{})

		got, ok := c.Get("Nonexistent")
		if !ok {
			t.Fatal("expected hit for cached empty result")
		}
		if len(got) != 0 {
			t.Errorf("items: expected empty, got %v", got)
		}
	})

	t.Run("entries expire after TTL", func(t *testing.T) {
		c := NewSearchCache(10, 20*time.Millisecond)
		c.Set("Stratocaster", strat)

		if _, ok := c.Get("Stratocaster"); !ok {
			t.Fatal("expected hit before expiry")
		}

		time.Sleep(50 * time.Millisecond)

		if _, ok := c.Get("Stratocaster"); ok {
			t.Error("expected miss after TTL elapsed")
		}
	})

	t.Run("least-recently-used entry is evicted at capacity", func(t *testing.T) {
		c := NewSearchCache(2, time.Minute)
		c.Set("Stratocaster", strat)
		c.Set("Telecaster", tele)

		// Touch Stratocaster so Telecaster becomes least recently used.
		if _, ok := c.Get("Stratocaster"); !ok {
			t.Fatal("expected hit for Stratocaster")
		}

		c.Set("Jazzmaster", []store.Guitar{{Name: "Jazzmaster"}})

		if _, ok := c.Get("Telecaster"); ok {
			t.Error("expected Telecaster to have been evicted")
		}
		if _, ok := c.Get("Stratocaster"); !ok {
			t.Error("expected Stratocaster to survive eviction")
		}
		if _, ok := c.Get("Jazzmaster"); !ok {
			t.Error("expected Jazzmaster to be present")
		}
		if c.Len() != 2 {
			t.Errorf("len: expected 2, got %d", c.Len())
		}
	})
}
