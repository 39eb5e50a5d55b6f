// Package cache provides a small TTL cache for values that are
// expensive to compute and fine to serve slightly stale, such as the
// public stats aggregates.
package cache

import (
	"sync"
	"time"
)

// TTL caches one value with an expiry timestamp and refreshes it
// through the loader on miss. Safe for concurrent use; only one
// caller refreshes at a time.
type TTL[T any] struct {
	mu        sync.RWMutex
	value     T
	expiresAt time.Time
	ttl       time.Duration
	loader    func() (T, error)
}

func NewTTL[T any](ttl time.Duration, loader func() (T, error)) *TTL[T] {
	return &TTL[T]{ttl: ttl, loader: loader}
}

// Get returns the cached value, refreshing it when expired. A failing
// refresh returns the error without caching anything, so the next call
// retries.
func (c *TTL[T]) Get() (T, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) {
		value := c.value
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if time.Now().Before(c.expiresAt) {
		return c.value, nil
	}

	value, err := c.loader()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = value
	c.expiresAt = time.Now().Add(c.ttl)
	return value, nil
}

// Invalidate drops the cached value so the next Get refreshes.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
