package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	firehoseWriteTimeout = 10 * time.Second
	firehosePingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleFirehose upgrades the connection to a WebSocket and streams pipeline
// updates to it until the client disconnects. Delivery is best effort; a
// client that cannot keep up misses updates rather than stalling the
// pipeline.
func (s *Server) HandleFirehose(w http.ResponseWriter, r *http.Request) {
	if s.coordinator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Pipeline unavailable", "No coordinator is running")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debugf("closing websocket: %v", err)
		}
	}()

	id, updates := s.coordinator.Subscribe()
	defer s.coordinator.Unsubscribe(id)
	s.logger.Debugf("firehose listener %d connected from %s", id, r.RemoteAddr)

	// Read pump: we never expect client messages, but reading is how the
	// peer's close frame is detected.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pings := time.NewTicker(firehosePingInterval)
	defer pings.Stop()

	for {
		select {
		case <-readClosed:
			return
		case <-r.Context().Done():
			return

		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(firehoseWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				s.logger.Debugf("firehose listener %d write failed: %v", id, err)
				return
			}

		case <-pings.C:
			if err := conn.SetWriteDeadline(time.Now().Add(firehoseWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
