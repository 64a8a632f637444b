package cache

import "github.com/rubiojr/lunchbox/pkg/core"

// Noop is a cache that stores nothing. It exists to prove (and preserve) the
// property that the pipeline is correct without a cache.
type Noop struct{}

// NewNoop creates a no-op cache.
func NewNoop() *Noop { return &Noop{} }

// Get always misses.
func (Noop) Get(string) ([]core.Place, bool) { return nil, false }

// Put discards the entry.
func (Noop) Put(string, []core.Place) {}

// Clear does nothing.
func (Noop) Clear() {}

// Close does nothing.
func (Noop) Close() error { return nil }
