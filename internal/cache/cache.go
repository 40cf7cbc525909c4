// Package cache holds the TTL-bounded LRU caches behind the dashboard and
// the manager that sweeps them.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"flock/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Clock returns the current time. Caches take one so tests can move time.
type Clock func() time.Time

// Cleaner is a cache the Manager can sweep.
type Cleaner interface {
	CleanExpired() int
	Stats() Stats
}

// Manager sweeps expired entries out of its registered caches on a ticker.
type Manager struct {
	logger *log.Logger

	mu     sync.Mutex
	caches map[string]Cleaner

	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger: logger.WithComponent(log.ComponentCache),
		caches: make(map[string]Cleaner),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds c under name; a second registration replaces the first.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup sweeps every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanAll()
			case <-m.stop:
				return
			}
		}
	}()
}

// CleanAll runs one sweep and returns the number of entries removed.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, c := range m.caches {
		n := c.CleanExpired()
		if n > 0 {
			s := c.Stats()
			m.logger.Debug("Expired cache entries removed",
				"cache", name, "removed", n, "hits", s.Hits, "misses", s.Misses)
		}
		total += n
	}
	return total
}

// Stop ends the sweep started by StartCleanup and waits for it. Safe to
// call more than once, or without a prior StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
	})
}
