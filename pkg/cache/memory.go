// Package cache provides the optional result cache for the search pipeline.
//
// Three implementations share the core.ResultCache contract: an in-memory
// TTL map, a sqlite-persisted store surviving restarts, and a no-op cache.
// The cache is advisory everywhere: a miss (or a broken cache) only costs
// latency and offline availability, never correctness.
package cache

import (
	"sync"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

// DefaultTTL is how long a cached search result stays valid.
const DefaultTTL = 5 * time.Minute

// Memory is an in-memory TTL cache keyed by core.CacheKey. Entries are
// immutable snapshots: Get and Put both deep-copy so callers can never
// mutate a cached slice in place.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	places   []core.Place
	storedAt time.Time
}

// NewMemory creates an in-memory cache. A ttl of 0 selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached places for key if the entry has not expired.
func (c *Memory) Get(key string) ([]core.Place, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return core.ClonePlaces(entry.places), true
}

// Put stores places under key, overwriting any prior entry.
func (c *Memory) Put(key string, places []core.Place) {
	entry := memoryEntry{
		places:   core.ClonePlaces(places),
		storedAt: c.now(),
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Memory) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Memory) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, entry := range c.entries {
		if c.now().Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Close implements core.ResultCache; the memory cache has nothing to close.
func (c *Memory) Close() error {
	return nil
}
