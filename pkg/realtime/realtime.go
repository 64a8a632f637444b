// Package realtime provides a lightweight in-process publish/subscribe hub
// used to fan out pipeline updates to multiple listeners (WebSocket
// sessions, CLI watchers, tests).
//
// Delivery is best effort: a listener whose buffer is full misses that
// update, so a slow consumer can never backpressure the pipeline. There is
// no persistence or replay; the stream is ephemeral.
package realtime

import (
	"sync"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

// Update is one published pipeline state change: the lane it belongs to,
// the new status and, on success, the visible result list.
type Update struct {
	RequestID string       `json:"request_id"`
	Lane      string       `json:"lane"`
	State     string       `json:"state"`
	Count     int          `json:"count"`
	FromCache bool         `json:"from_cache"`
	Error     string       `json:"error,omitempty"`
	Places    []core.Place `json:"places,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Hub is a concurrency-safe fan-out dispatcher. Each subscriber gets its own
// buffered channel.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Update
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Update),
		bufSize:   bufSize,
	}
}

// Subscribe registers a new listener and returns its ID and channel.
// The channel is closed by Unsubscribe.
func (h *Hub) Subscribe() (uint64, <-chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Update, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Publish delivers an update to every listener that has buffer space.
func (h *Hub) Publish(update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- update:
		default:
			// Listener buffer full; drop for this listener only.
		}
	}
}

// ListenerCount returns the number of active listeners.
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
