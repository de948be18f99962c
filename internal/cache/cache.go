// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides an in-memory TTL cache whose entry lifetime may
// depend on the stored value. Expired entries are removed lazily on access
// and by Sweep.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// TTLFunc returns how long a value stays fresh.
type TTLFunc[V any] func(V) time.Duration

// Fixed returns a TTLFunc that ignores the value.
func Fixed[V any](d time.Duration) TTLFunc[V] {
	return func(V) time.Duration { return d }
}

type entry[V any] struct {
	value  V
	stored time.Time
}

// Cache is a concurrency-safe map from string keys to timestamped values.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     TTLFunc[V]
	clock   Clock
}

// New creates a cache. A nil clock means SystemClock.
func New[V any](ttl TTLFunc[V], clock Clock) *Cache[V] {
	if clock == nil {
		clock = SystemClock
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the value for key when it is still fresh. A stale entry is
// deleted and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.fresh(e, now) {
		return e.value, true
	}

	c.mu.Lock()
	// Another writer may have refreshed the entry meanwhile.
	if cur, ok := c.entries[key]; ok && !c.fresh(cur, now) {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	var zero V
	return zero, false
}

// Set stores value under key with the current time. The last write wins.
func (c *Cache[V]) Set(key string, value V) {
	now := c.clock.Now()
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, stored: now}
	c.mu.Unlock()
}

// Sweep deletes every expired entry and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if !c.fresh(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) fresh(e entry[V], now time.Time) bool {
	return now.Sub(e.stored) < c.ttl(e.value)
}
