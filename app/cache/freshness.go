package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-process, single-flight TTL cache for named result sets.
// Readers always receive a value: fresh, stale, or the static fallback.
// Refresh failures are absorbed here and only visible through Status.
type Cache[T any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[T]
	fallback T
	now      func() time.Time
}

type entry[T any] struct {
	value      T
	hasValue   bool
	fetchedAt  time.Time
	ttl        time.Duration
	refreshing bool
	failures   int
}

// EntryStatus describes one cache key for introspection endpoints.
type EntryStatus struct {
	HasValue   bool      `json:"has_value"`
	FetchedAt  time.Time `json:"fetched_at"`
	TTLSeconds float64   `json:"ttl_seconds"`
	Expired    bool      `json:"expired"`
	Refreshing bool      `json:"refreshing"`
	Failures   int       `json:"failures"`
}

func New[T any](fallback T) *Cache[T] {
	return &Cache[T]{
		entries:  make(map[string]*entry[T]),
		fallback: fallback,
		now:      time.Now,
	}
}

// Get returns the value for key. A live entry is returned immediately. When
// the entry is expired or absent, exactly one caller runs refresh while
// concurrent callers get the stale value or the fallback without blocking.
// Once maxRetries consecutive refreshes have failed, the fallback is served
// without invoking refresh again until Clear resets the key.
func (c *Cache[T]) Get(ctx context.Context, key string, refresh func(context.Context) (T, error), ttl time.Duration, maxRetries int) T {
	c.mu.Lock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}

	now := c.now()
	if e.hasValue && now.Sub(e.fetchedAt) < e.ttl {
		value := e.value
		c.mu.Unlock()
		return value
	}

	if e.failures >= maxRetries {
		c.mu.Unlock()
		return c.fallback
	}

	if e.refreshing {
		// Another caller owns the refresh; do not pile onto the upstream.
		if e.hasValue {
			value := e.value
			c.mu.Unlock()
			return value
		}
		c.mu.Unlock()
		return c.fallback
	}

	e.refreshing = true
	c.mu.Unlock()

	value, err := refresh(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.refreshing = false

	if err != nil {
		e.failures++
		if e.failures >= maxRetries || !e.hasValue {
			return c.fallback
		}
		return e.value
	}

	e.value = value
	e.hasValue = true
	e.fetchedAt = c.now()
	e.ttl = ttl
	e.failures = 0
	return value
}

// Clear expires the value and resets the failure counter for key. The entry
// is reset in place rather than deleted: an in-flight refresh holds a pointer
// to it, and dropping the entry would let a second refresh start concurrently
// and orphan the first result.
func (c *Cache[T]) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}

	var zero T
	e.value = zero
	e.hasValue = false
	e.fetchedAt = time.Time{}
	e.ttl = 0
	e.failures = 0
}

// Status reports the health of every known key.
func (c *Cache[T]) Status() map[string]EntryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	status := make(map[string]EntryStatus, len(c.entries))
	for key, e := range c.entries {
		status[key] = EntryStatus{
			HasValue:   e.hasValue,
			FetchedAt:  e.fetchedAt,
			TTLSeconds: e.ttl.Seconds(),
			Expired:    !e.hasValue || now.Sub(e.fetchedAt) >= e.ttl,
			Refreshing: e.refreshing,
			Failures:   e.failures,
		}
	}
	return status
}
