package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4") // Should evict key1

	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := cache.Get(k); !found {
			t.Errorf("%s should still be cached", k)
		}
	}
	if cache.Size() != 3 {
		t.Errorf("Expected size 3, got %d", cache.Size())
	}
}

func TestLRUCacheRecentlyUsedSurvives(t *testing.T) {
	cache := NewLRUCache[string](2, time.Hour)
	cache.Set("a", "1")
	cache.Set("b", "2")
	cache.Get("a")
	cache.Set("c", "3") // evicts b, not a

	if _, found := cache.Get("a"); !found {
		t.Error("a was recently used and should survive")
	}
	if _, found := cache.Get("b"); found {
		t.Error("b should have been evicted")
	}
}

// TestLRUCacheTTLBoundary checks that an entry is stale at exactly ttl.
func TestLRUCacheTTLBoundary(t *testing.T) {
	clock := newFakeClock()
	cache := NewLRUCacheWithClock[string](10, 5*time.Minute, clock.Now)
	cache.Set("org", "snapshot")

	clock.Advance(5*time.Minute - time.Nanosecond)
	if _, found := cache.Get("org"); !found {
		t.Fatal("entry should be valid just before ttl")
	}

	clock.Advance(time.Nanosecond)
	if _, found := cache.Get("org"); found {
		t.Fatal("entry should be stale at exactly ttl")
	}
	if cache.Size() != 0 {
		t.Fatal("stale entry should be removed on read")
	}
}

func TestLRUCacheSetRefreshesProducedAt(t *testing.T) {
	clock := newFakeClock()
	cache := NewLRUCacheWithClock[string](10, time.Minute, clock.Now)
	cache.Set("k", "v1")
	clock.Advance(50 * time.Second)
	cache.Set("k", "v2")
	clock.Advance(50 * time.Second)

	v, found := cache.Get("k")
	if !found || v != "v2" {
		t.Fatalf("expected refreshed v2, got %q found=%v", v, found)
	}
}

// TestLRUCacheCleanup tests the cleanup mechanism
func TestLRUCacheCleanup(t *testing.T) {
	clock := newFakeClock()
	cache := NewLRUCacheWithClock[string](100, 50*time.Millisecond, clock.Now)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	clock.Advance(30 * time.Millisecond)
	cache.Set("key3", "value3")
	clock.Advance(30 * time.Millisecond)

	removed := cache.CleanExpired()
	if removed != 2 {
		t.Errorf("Expected 2 items cleaned, got %d", removed)
	}
	if _, found := cache.Get("key3"); !found {
		t.Error("key3 is still fresh")
	}
}

func TestLRUCachePurgeAndDelete(t *testing.T) {
	cache := NewLRUCache[int](10, time.Hour)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Delete("a")
	if _, found := cache.Get("a"); found {
		t.Fatal("a should be deleted")
	}
	cache.Purge()
	if cache.Size() != 0 {
		t.Fatalf("Expected empty cache after purge, got %d", cache.Size())
	}
	cache.Set("c", 3)
	if v, found := cache.Get("c"); !found || v != 3 {
		t.Fatal("cache should be usable after purge")
	}
}

// BenchmarkLRUCache benchmarks cache performance
func BenchmarkLRUCache(b *testing.B) {
	cache := NewLRUCache[string](1000, time.Hour)

	b.ResetTimer()

	// Test mixed read/write workload
	for i := 0; i < b.N; i++ {
		key := "bench-key"
		if i%10 == 0 {
			// 10% writes
			cache.Set(key, "snapshot")
		} else {
			// 90% reads
			cache.Get(key)
		}
	}
}

func TestLRUCacheStats(t *testing.T) {
	clock := newFakeClock()
	cache := NewLRUCacheWithClock[int](2, time.Minute, clock.Now)

	cache.Set("a", 1)
	cache.Get("a")
	cache.Get("missing")
	cache.Set("b", 2)
	cache.Set("c", 3) // evicts a
	clock.Advance(time.Minute)
	cache.Get("b") // stale

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 2 || s.Evictions != 1 || s.Expired != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if removed := cache.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired = %d, want 1", removed)
	}
	if cache.Stats().Expired != 2 {
		t.Fatalf("expired = %d", cache.Stats().Expired)
	}
}
