// Package cache provides an age-expiring in-memory key/value store shared by
// the remote-data feature extractors to avoid redundant upstream calls.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TTL is a thread-safe map whose entries expire once they are older than a
// configured timeout. Expiry is lazy: an expired entry is removed on the Get
// that observes it. There is no size bound and no LRU eviction; cardinality
// is bounded by the callers rounding their coordinate keys. A long-running
// process with unbounded distinct keys should sweep with CleanupExpired.
type TTL[V any] struct {
	defaultTimeout time.Duration
	clock          clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	storedAt time.Time
	value    V
}

// New creates a TTL cache with the given default entry timeout.
// A nil clock defaults to the real clock; tests inject a fake.
func New[V any](defaultTimeout time.Duration, clock clockwork.Clock) *TTL[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTL[V]{
		defaultTimeout: defaultTimeout,
		clock:          clock,
		entries:        make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if it is younger than the cache's
// default timeout. Expired entries are deleted and reported as absent.
func (c *TTL[V]) Get(key string) (V, bool) {
	return c.GetWithTimeout(key, c.defaultTimeout)
}

// GetWithTimeout is Get with a per-call timeout override.
func (c *TTL[V]) GetWithTimeout(key string, timeout time.Duration) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.clock.Since(e.storedAt) > timeout {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time. An existing
// entry is overwritten and its age resets.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{storedAt: c.clock.Now(), value: value}
}

// Clear removes all entries.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// CleanupExpired eagerly removes every entry older than the default timeout
// and returns the number removed.
func (c *TTL[V]) CleanupExpired() int {
	return c.CleanupExpiredWithTimeout(c.defaultTimeout)
}

// CleanupExpiredWithTimeout is CleanupExpired with a per-call timeout override.
func (c *TTL[V]) CleanupExpiredWithTimeout(timeout time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.clock.Since(e.storedAt) > timeout {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
