package cache

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(size int, ttl, grace time.Duration) (*LRUCache[string], *clock) {
	clk := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl, grace)
	c.now = clk.now
	return c, clk
}

func TestGetRespectsTTL(t *testing.T) {
	c, clk := newTestCache(4, time.Minute, 0)
	c.Set("k", "v")

	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected fresh hit, got %q %v", v, ok)
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry must miss")
	}
	if c.Size() != 0 {
		t.Fatalf("entry past grace should be dropped on access")
	}
}

func TestGetStaleWithinGrace(t *testing.T) {
	c, clk := newTestCache(4, time.Minute, time.Hour)
	c.Set("jwks", "keys-v1")
	clk.t = clk.t.Add(10 * time.Minute)

	if _, ok := c.Get("jwks"); ok {
		t.Fatalf("Get must not return stale values")
	}
	if v, ok := c.GetStale("jwks"); !ok || v != "keys-v1" {
		t.Fatalf("GetStale should return last value, got %q %v", v, ok)
	}

	clk.t = clk.t.Add(2 * time.Hour)
	if _, ok := c.GetStale("jwks"); ok {
		t.Fatalf("value past grace must be gone")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a was recently used and should stay")
	}
}

func TestCleanExpiredAndManager(t *testing.T) {
	c, clk := newTestCache(8, time.Minute, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clk.t = clk.t.Add(90 * time.Second)
	c.Set("c", "3")

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 0 {
		t.Fatalf("entries within grace must survive cleanup, removed %d", n)
	}
	clk.t = clk.t.Add(time.Minute)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Size())
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
