package places

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
)

// MockTimeout is the per-request timeout used in mock/offline mode.
const MockTimeout = 5 * time.Second

// mockPageSize is how many places a mock search returns per page.
const mockPageSize = 5

// MockClient is an offline implementation of core.SearchClient that serves a
// deterministic set of restaurants scattered around the requested location.
// It is used when no API key is configured and by the CLI's --mock flag.
type MockClient struct {
	names []string
}

// NewMockClient creates a mock client with a fixed roster of restaurants.
func NewMockClient() *MockClient {
	return &MockClient{
		names: []string{
			"Al Forno", "Bamboo Garden", "Casa Lupita", "Dromedary Deli",
			"El Faro", "Falafel Corner", "Golden Wok", "Harbor Oyster Bar",
			"Izakaya Juban", "Juniper & Sage", "Kebab Empire", "La Parrilla",
		},
	}
}

// SearchNearby returns mock places around loc.
func (m *MockClient) SearchNearby(ctx context.Context, loc core.Location, radiusMeters int, pageToken string) (*core.SearchPage, error) {
	return m.page(ctx, loc, "", pageToken)
}

// SearchText returns mock places whose names match the query, or the full
// roster when nothing matches.
func (m *MockClient) SearchText(ctx context.Context, query string, loc *core.Location, pageToken string) (*core.SearchPage, error) {
	at := core.Location{Lat: 37.7749, Lng: -122.4194}
	if loc != nil {
		at = *loc
	}
	return m.page(ctx, at, query, pageToken)
}

// GetDetails returns a mock detail record for any place ID.
func (m *MockClient) GetDetails(ctx context.Context, placeID string) (*core.PlaceDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := 0
	if _, err := fmt.Sscanf(placeID, "mock-%d", &idx); err != nil || idx < 0 || idx >= len(m.names) {
		return nil, &core.UpstreamError{Code: "NOT_FOUND", Message: placeID}
	}
	place := m.place(idx, core.Location{Lat: 37.7749, Lng: -122.4194})
	return &core.PlaceDetail{
		Place:        place,
		Phone:        fmt.Sprintf("+1 555 010%02d", idx),
		Website:      fmt.Sprintf("https://example.com/%s", placeID),
		OpeningHours: []string{"Mon-Fri: 11:00-22:00", "Sat-Sun: 12:00-23:00"},
	}, nil
}

func (m *MockClient) page(ctx context.Context, loc core.Location, query string, pageToken string) (*core.SearchPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matching := m.matching(query)
	start := 0
	if pageToken != "" {
		if _, err := fmt.Sscanf(pageToken, "mock-page-%d", &start); err != nil {
			return nil, &core.UpstreamError{Code: "INVALID_REQUEST", Message: "bad page token"}
		}
	}
	if start >= len(matching) {
		return &core.SearchPage{}, nil
	}

	end := start + mockPageSize
	if end > len(matching) {
		end = len(matching)
	}

	page := &core.SearchPage{}
	for _, idx := range matching[start:end] {
		page.Places = append(page.Places, m.place(idx, loc))
	}
	if end < len(matching) {
		page.NextPageToken = fmt.Sprintf("mock-page-%d", end)
	}
	return page, nil
}

// matching returns indices of roster entries matching the query, or all of
// them for an empty or unmatched query.
func (m *MockClient) matching(query string) []int {
	query = strings.ToLower(core.NormalizeQuery(query))
	var hits, all []int
	for i, name := range m.names {
		all = append(all, i)
		if query != "" && strings.Contains(strings.ToLower(name), query) {
			hits = append(hits, i)
		}
	}
	if len(hits) > 0 {
		return hits
	}
	return all
}

func (m *MockClient) place(idx int, near core.Location) core.Place {
	rating := 3.0 + float64(idx%5)*0.5
	price := 1 + idx%4
	return core.Place{
		ID:     fmt.Sprintf("mock-%d", idx),
		Name:   m.names[idx],
		Rating:     &rating,
		PriceLevel: &price,
		// Spread the roster on a small grid around the caller's location.
		Location: core.Location{
			Lat: near.Lat + float64(idx%4)*0.001,
			Lng: near.Lng + float64(idx/4)*0.001,
		},
		Address:   fmt.Sprintf("%d Sample St", 100+idx),
		PhotoRefs: []string{fmt.Sprintf("mock-photo-%d", idx)},
	}
}
