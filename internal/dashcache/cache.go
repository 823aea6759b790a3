// Package dashcache provides a caller-owned, TTL-bounded cache for computed
// dashboards. The forecasting core never caches; layers that serve repeated
// reads (the daemon API) hold one of these explicitly.
package dashcache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds the most recent value produced by a compute function.
type Cache[T any] struct {
	mu       sync.Mutex
	value    T
	storedAt time.Time
	valid    bool

	group singleflight.Group
	now   func() time.Time
}

// Option customizes a Cache.
type Option[T any] func(*Cache[T])

// WithClock overrides the time source (useful for tests).
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty cache.
func New[T any](opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached value when it is younger than ttl, otherwise
// runs compute and stores its result. Concurrent misses share a single compute
// call. Errors are returned to every waiter and never cached. A ttl <= 0 always
// recomputes.
func (c *Cache[T]) GetOrCompute(ttl time.Duration, compute func() (T, error)) (T, error) {
	if value, ok := c.fresh(ttl); ok {
		return value, nil
	}
	result, err, _ := c.group.Do("value", func() (any, error) {
		if value, ok := c.fresh(ttl); ok {
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return value, err
		}
		c.mu.Lock()
		c.value = value
		c.storedAt = c.now()
		c.valid = true
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}

// Peek returns the stored value and when it was computed, regardless of age.
func (c *Cache[T]) Peek() (T, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.storedAt, c.valid
}

// Invalidate drops the stored value so the next call recomputes.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.storedAt = time.Time{}
	c.valid = false
}

func (c *Cache[T]) fresh(ttl time.Duration) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || ttl <= 0 || c.now().Sub(c.storedAt) >= ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}
