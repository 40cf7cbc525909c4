package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ReadThrough fronts an LRUCache with a loader. Concurrent misses for the
// same key share a single load. A load that started before an Invalidate or
// Purge still answers its callers but is not stored.
type ReadThrough[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group

	mu       sync.Mutex
	epoch    uint64
	gens     map[string]uint64
	inflight map[string]int // running loads per key
}

func NewReadThrough[T any](c *LRUCache[T]) *ReadThrough[T] {
	return &ReadThrough[T]{
		cache:    c,
		gens:     make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

// Cache exposes the underlying store, e.g. for registration with a Manager.
func (r *ReadThrough[T]) Cache() *LRUCache[T] { return r.cache }

// Get returns the cached value for key or runs load once to produce it.
// The load runs detached from the caller's cancellation; a caller whose ctx
// ends gets ctx.Err() while the load keeps going for the others.
func (r *ReadThrough[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := r.cache.Get(key); ok {
		return v, nil
	}

	ch := r.group.DoChan(key, func() (any, error) {
		if v, ok := r.cache.Get(key); ok {
			return v, nil
		}
		s := r.begin(key)
		v, err := load(context.WithoutCancel(ctx))

		r.mu.Lock()
		defer r.mu.Unlock()
		r.inflight[key]--
		if r.inflight[key] <= 0 {
			delete(r.inflight, key)
		}
		if err != nil {
			return v, err
		}
		if r.current(key, s) {
			r.cache.Set(key, v)
		}
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Invalidate drops key and makes any in-flight load for it non-storable.
func (r *ReadThrough[T]) Invalidate(key string) {
	r.mu.Lock()
	r.gens[key]++
	r.cache.Delete(key)
	r.mu.Unlock()
	r.group.Forget(key)
}

// Purge drops every key.
func (r *ReadThrough[T]) Purge() {
	r.mu.Lock()
	r.epoch++
	r.gens = make(map[string]uint64)
	r.cache.Purge()
	keys := make([]string, 0, len(r.inflight))
	for k := range r.inflight {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	for _, k := range keys {
		r.group.Forget(k)
	}
}

type loadStamp struct {
	epoch uint64
	gen   uint64
}

func (r *ReadThrough[T]) begin(key string) loadStamp {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[key]++
	return loadStamp{epoch: r.epoch, gen: r.gens[key]}
}

// current must be called with r.mu held.
func (r *ReadThrough[T]) current(key string, s loadStamp) bool {
	return s.epoch == r.epoch && s.gen == r.gens[key]
}
