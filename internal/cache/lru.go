package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry is owned by the cache. It is valid while now-producedAt < ttl; at
// exactly ttl it is stale.
type entry[T any] struct {
	key        string
	value      T
	producedAt time.Time
	ttl        time.Duration
}

func (e *entry[T]) stale(now time.Time) bool {
	return now.Sub(e.producedAt) >= e.ttl
}

// Stats are cumulative counters since the cache was built.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Expired   int64
}

// LRUCache bounds both entry age and entry count; the least recently read
// entry goes first when full.
type LRUCache[T any] struct {
	capacity int
	ttl      time.Duration
	now      Clock

	mu    sync.Mutex
	index map[string]*list.Element
	order *list.List // front = most recently used
	stats Stats
}

func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	return NewLRUCacheWithClock[T](capacity, ttl, time.Now)
}

// NewLRUCacheWithClock is NewLRUCache with an explicit time source.
func NewLRUCacheWithClock[T any](capacity int, ttl time.Duration, now Clock) *LRUCache[T] {
	if capacity <= 0 {
		capacity = 1
	}
	if now == nil {
		now = time.Now
	}
	return &LRUCache[T]{
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// TTL returns the lifetime given to new entries.
func (c *LRUCache[T]) TTL() time.Duration { return c.ttl }

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := el.Value.(*entry[T])
	if e.stale(c.now()) {
		c.unlink(el)
		c.stats.Expired++
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return e.value, true
}

// Set stores value with a fresh producedAt, replacing any previous entry.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, producedAt: c.now(), ttl: c.ttl}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(e)

	for c.order.Len() > c.capacity {
		c.unlink(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.unlink(el)
	}
}

func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.index)
	c.order.Init()
}

func (c *LRUCache[T]) unlink(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}

// CleanExpired drops every stale entry and returns how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry[T]).stale(now) {
			c.unlink(el)
			removed++
		}
		el = prev
	}
	c.stats.Expired += int64(removed)
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
