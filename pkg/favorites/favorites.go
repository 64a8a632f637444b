// Package favorites implements the favorite store: the set of place IDs the
// user has starred. The pipeline reads a fresh snapshot on every merge and
// toggles must be visible to the very next read, so both implementations
// keep the set in memory and the sqlite store persists each toggle before
// updating it.
package favorites

import (
	"sync"
)

// Memory is a volatile favorite store, used in tests and mock mode.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewMemory creates an empty in-memory favorite store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]bool)}
}

// FavoriteIDs returns a snapshot of the favorited IDs.
func (m *Memory) FavoriteIDs() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.ids))
	for id := range m.ids {
		out[id] = true
	}
	return out
}

// IsFavorite reports whether id is favorited.
func (m *Memory) IsFavorite(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ids[id]
}

// Toggle flips the favorite state of id and returns the new state.
func (m *Memory) Toggle(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[id] {
		delete(m.ids, id)
		return false, nil
	}
	m.ids[id] = true
	return true, nil
}

// Close implements core.FavoriteStore.
func (m *Memory) Close() error {
	return nil
}
