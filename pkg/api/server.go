package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/log"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

// Server exposes the search pipeline over HTTP. Stateless endpoints run a
// single search cycle per request; the stateful endpoints feed the shared
// coordinator and stream its updates.
type Server struct {
	coordinator *pipeline.Coordinator
	deps        pipeline.Deps
	radius      int
	logger      *log.Logger
}

func NewServer(coordinator *pipeline.Coordinator, deps pipeline.Deps, radiusMeters int) *Server {
	if radiusMeters <= 0 {
		radiusMeters = pipeline.DefaultRadiusMeters
	}
	return &Server{
		coordinator: coordinator,
		deps:        deps,
		radius:      radiusMeters,
		logger:      log.ForComponent("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

// writeSearchError maps a search failure to an HTTP status.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrLocationPermissionDenied):
		s.writeError(w, http.StatusBadRequest, "Missing location", err.Error())
	case errors.Is(err, core.ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, "Rate limited", err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		s.writeError(w, http.StatusBadGateway, "Upstream rejected credentials", err.Error())
	case errors.Is(err, core.ErrTimeout), errors.Is(err, core.ErrNetworkUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, "Upstream unavailable", err.Error())
	case errors.Is(err, core.ErrDecode):
		s.writeError(w, http.StatusBadGateway, "Upstream response malformed", err.Error())
	default:
		var upstream *core.UpstreamError
		if errors.As(err, &upstream) {
			s.writeError(w, http.StatusBadGateway, "Upstream error", err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
	}
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
