package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/nearby", s.HandleNearby)
	mux.HandleFunc("GET /api/place/{id}", s.HandlePlace)
	mux.HandleFunc("GET /api/favorites", s.HandleListFavorites)
	mux.HandleFunc("POST /api/favorites/{id}", s.HandleToggleFavorite)
	mux.HandleFunc("POST /api/query", s.HandleQuery)
	mux.HandleFunc("POST /api/location", s.HandleLocation)
	mux.HandleFunc("GET /api/status", s.HandleStatus)
	mux.HandleFunc("GET /api/firehose", s.HandleFirehose)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
