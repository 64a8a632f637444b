package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
	"github.com/rubiojr/lunchbox/pkg/version"
)

// parseLatLng reads lat/lng query parameters. Both must be present together.
func parseLatLng(r *http.Request) (*core.Location, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, fmt.Errorf("lat and lng must be provided together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngStr)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range")
	}
	return &core.Location{Lat: lat, Lng: lng}, nil
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := core.NormalizeQuery(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	loc, err := parseLatLng(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid location", err.Error())
		return
	}

	res, err := pipeline.Execute(r.Context(), s.deps, pipeline.Request{
		Lane:         pipeline.LaneText,
		Query:        query,
		Location:     loc,
		RadiusMeters: s.radius,
		PageToken:    r.URL.Query().Get("pagetoken"),
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:         query,
		Places:        res.Places,
		Count:         len(res.Places),
		NextPageToken: res.NextPageToken,
		FromCache:     res.FromCache,
	})
}

func (s *Server) HandleNearby(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLatLng(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid location", err.Error())
		return
	}
	if loc == nil {
		s.writeError(w, http.StatusBadRequest, "Missing location", "Query parameters 'lat' and 'lng' are required")
		return
	}

	radius := s.radius
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		radius, err = strconv.Atoi(radiusStr)
		if err != nil || radius <= 0 {
			s.writeError(w, http.StatusBadRequest, "Invalid radius", fmt.Sprintf("radius %q must be a positive integer", radiusStr))
			return
		}
	}

	res, err := pipeline.Execute(r.Context(), s.deps, pipeline.Request{
		Lane:         pipeline.LaneNearby,
		Location:     loc,
		RadiusMeters: radius,
		PageToken:    r.URL.Query().Get("pagetoken"),
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Places:        res.Places,
		Count:         len(res.Places),
		NextPageToken: res.NextPageToken,
		FromCache:     res.FromCache,
	})
}

func (s *Server) HandlePlace(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("id")
	if placeID == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Place ID is required")
		return
	}

	detail, err := s.deps.Client.GetDetails(r.Context(), placeID)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	if s.deps.Favorites != nil {
		detail.IsFavorite = s.deps.Favorites.IsFavorite(detail.ID)
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	if s.deps.Favorites == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Favorites unavailable", "No favorite store is configured")
		return
	}

	ids := make([]string, 0)
	for id := range s.deps.Favorites.FavoriteIDs() {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s.writeJSON(w, http.StatusOK, FavoritesResponse{
		Favorites: ids,
		Count:     len(ids),
	})
}

func (s *Server) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("id")
	if placeID == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Place ID is required")
		return
	}
	if s.deps.Favorites == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Favorites unavailable", "No favorite store is configured")
		return
	}

	var state bool
	var err error
	if s.coordinator != nil {
		// Toggling through the coordinator refreshes the published overlay.
		state, err = s.coordinator.ToggleFavorite(placeID)
	} else {
		state, err = s.deps.Favorites.Toggle(placeID)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Toggle failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ToggleFavoriteResponse{
		ID:       placeID,
		Favorite: state,
	})
}

func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if s.coordinator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Pipeline unavailable", "No coordinator is running")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}

	s.coordinator.SetQuery(req.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleLocation(w http.ResponseWriter, r *http.Request) {
	if s.coordinator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Pipeline unavailable", "No coordinator is running")
		return
	}

	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		s.writeError(w, http.StatusBadRequest, "Invalid location", "Coordinates out of range")
		return
	}

	s.coordinator.SetLocation(core.Location{Lat: req.Lat, Lng: req.Lng})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if s.coordinator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Pipeline unavailable", "No coordinator is running")
		return
	}

	status, places := s.coordinator.Snapshot()
	response := StatusResponse{
		State:     status.State.String(),
		Lane:      status.Lane.String(),
		Count:     status.Count,
		FromCache: status.FromCache,
		Places:    places,
	}
	if status.Err != nil {
		response.Error = status.Err.Error()
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
