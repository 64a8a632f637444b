package api

import (
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

type SearchResponse struct {
	Query         string       `json:"query,omitempty"`
	Places        []core.Place `json:"places"`
	Count         int          `json:"count"`
	NextPageToken string       `json:"next_page_token,omitempty"`
	FromCache     bool         `json:"from_cache"`
}

type StatusResponse struct {
	State     string       `json:"state"`
	Lane      string       `json:"lane"`
	Count     int          `json:"count"`
	FromCache bool         `json:"from_cache"`
	Error     string       `json:"error,omitempty"`
	Places    []core.Place `json:"places"`
}

type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
	Count     int      `json:"count"`
}

type ToggleFavoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
