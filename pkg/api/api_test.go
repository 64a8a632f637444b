package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

type stubClient struct {
	mu      sync.Mutex
	nearby  func(ctx context.Context, loc core.Location, radiusMeters int, pageToken string) (*core.SearchPage, error)
	text    func(ctx context.Context, query string, loc *core.Location, pageToken string) (*core.SearchPage, error)
	details func(ctx context.Context, placeID string) (*core.PlaceDetail, error)
}

func (c *stubClient) SearchNearby(ctx context.Context, loc core.Location, radiusMeters int, pageToken string) (*core.SearchPage, error) {
	if c.nearby == nil {
		return &core.SearchPage{}, nil
	}
	return c.nearby(ctx, loc, radiusMeters, pageToken)
}

func (c *stubClient) SearchText(ctx context.Context, query string, loc *core.Location, pageToken string) (*core.SearchPage, error) {
	if c.text == nil {
		return &core.SearchPage{}, nil
	}
	return c.text(ctx, query, loc, pageToken)
}

func (c *stubClient) GetDetails(ctx context.Context, placeID string) (*core.PlaceDetail, error) {
	if c.details == nil {
		return nil, core.ErrNetworkUnavailable
	}
	return c.details(ctx, placeID)
}

type stubFavorites struct {
	mu  sync.Mutex
	ids map[string]bool
}

func newStubFavorites(ids ...string) *stubFavorites {
	f := &stubFavorites{ids: make(map[string]bool)}
	for _, id := range ids {
		f.ids[id] = true
	}
	return f
}

func (f *stubFavorites) FavoriteIDs() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.ids))
	for id := range f.ids {
		out[id] = true
	}
	return out
}

func (f *stubFavorites) IsFavorite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ids[id]
}

func (f *stubFavorites) Toggle(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids[id] {
		delete(f.ids, id)
		return false, nil
	}
	f.ids[id] = true
	return true, nil
}

func (f *stubFavorites) Close() error { return nil }

func newTestServer(t *testing.T, deps pipeline.Deps) *httptest.Server {
	t.Helper()
	server := NewServer(nil, deps, 1500)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	decodeBody(t, resp, &health)
	if health.Status != "ok" || health.Version == "" {
		t.Errorf("unexpected health payload: %+v", health)
	}
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	resp, err := http.Get(ts.URL + "/api/search")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleSearchReturnsPlaces(t *testing.T) {
	client := &stubClient{
		text: func(ctx context.Context, q string, loc *core.Location, token string) (*core.SearchPage, error) {
			if q != "pizza" {
				t.Errorf("unexpected query %q", q)
			}
			return &core.SearchPage{
				Places:        []core.Place{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}},
				NextPageToken: "page-2",
			}, nil
		},
	}
	ts := newTestServer(t, pipeline.Deps{Client: client, Favorites: newStubFavorites("b")})

	resp, err := http.Get(ts.URL + "/api/search?q=pizza")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body SearchResponse
	decodeBody(t, resp, &body)
	if body.Count != 2 || len(body.Places) != 2 {
		t.Fatalf("expected 2 places, got %+v", body)
	}
	if body.NextPageToken != "page-2" {
		t.Errorf("expected page token, got %q", body.NextPageToken)
	}
	if !body.Places[1].IsFavorite {
		t.Error("favorite overlay missing in API response")
	}
}

func TestHandleSearchRejectsPartialLocation(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	resp, err := http.Get(ts.URL + "/api/search?q=pizza&lat=40.0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for lat without lng, got %d", resp.StatusCode)
	}
}

func TestHandleNearbyRequiresLocation(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	resp, err := http.Get(ts.URL + "/api/nearby")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleNearbyMapsUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"network unavailable", core.ErrNetworkUnavailable, http.StatusServiceUnavailable},
		{"timeout", core.ErrTimeout, http.StatusServiceUnavailable},
		{"rate limited", core.ErrRateLimited, http.StatusTooManyRequests},
		{"bad credentials", core.ErrInvalidCredentials, http.StatusBadGateway},
		{"decode failure", core.ErrDecode, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{
				nearby: func(ctx context.Context, loc core.Location, r int, token string) (*core.SearchPage, error) {
					return nil, tt.err
				},
			}
			ts := newTestServer(t, pipeline.Deps{Client: client})

			resp, err := http.Get(ts.URL + "/api/nearby?lat=40.4&lng=-3.7")
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}

func TestHandleNearbyCustomRadius(t *testing.T) {
	var gotRadius int
	client := &stubClient{
		nearby: func(ctx context.Context, loc core.Location, r int, token string) (*core.SearchPage, error) {
			gotRadius = r
			return &core.SearchPage{}, nil
		},
	}
	ts := newTestServer(t, pipeline.Deps{Client: client})

	resp, err := http.Get(ts.URL + "/api/nearby?lat=40.4&lng=-3.7&radius=500")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotRadius != 500 {
		t.Errorf("expected radius 500 to reach the client, got %d", gotRadius)
	}

	resp, err = http.Get(ts.URL + "/api/nearby?lat=40.4&lng=-3.7&radius=lots")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad radius, got %d", resp.StatusCode)
	}
}

func TestHandlePlaceOverlaysFavorite(t *testing.T) {
	client := &stubClient{
		details: func(ctx context.Context, placeID string) (*core.PlaceDetail, error) {
			return &core.PlaceDetail{
				Place: core.Place{ID: placeID, Name: "Detailed"},
				Phone: "+34 900 000 000",
			}, nil
		},
	}
	ts := newTestServer(t, pipeline.Deps{Client: client, Favorites: newStubFavorites("some-id")})

	resp, err := http.Get(ts.URL + "/api/place/some-id")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var detail core.PlaceDetail
	decodeBody(t, resp, &detail)
	if detail.ID != "some-id" || !detail.IsFavorite {
		t.Errorf("unexpected detail payload: %+v", detail)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}, Favorites: newStubFavorites("b", "a")})

	resp, err := http.Get(ts.URL + "/api/favorites")
	if err != nil {
		t.Fatal(err)
	}
	var list FavoritesResponse
	decodeBody(t, resp, &list)
	if list.Count != 2 || list.Favorites[0] != "a" || list.Favorites[1] != "b" {
		t.Fatalf("expected sorted favorites [a b], got %+v", list)
	}

	resp, err = http.Post(ts.URL+"/api/favorites/c", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var toggled ToggleFavoriteResponse
	decodeBody(t, resp, &toggled)
	if !toggled.Favorite || toggled.ID != "c" {
		t.Fatalf("expected c toggled on, got %+v", toggled)
	}

	resp, err = http.Post(ts.URL+"/api/favorites/c", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &toggled)
	if toggled.Favorite {
		t.Fatal("expected c toggled back off")
	}
}

func TestPipelineEndpointsWithoutCoordinator(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/query"},
		{http.MethodPost, "/api/location"},
		{http.MethodGet, "/api/status"},
	} {
		req, err := http.NewRequest(tc.method, ts.URL+tc.path, bytes.NewReader([]byte(`{}`)))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503 without coordinator, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestPipelineEndpointsWithCoordinator(t *testing.T) {
	deps := pipeline.Deps{Client: &stubClient{}}
	coordinator := pipeline.NewCoordinator(pipeline.Config{}, deps)
	if err := coordinator.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(coordinator.Stop)

	server := NewServer(coordinator, deps, 1500)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/api/query", "application/json", bytes.NewReader([]byte(`{"query":"ramen"}`)))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for query, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/location", "application/json", bytes.NewReader([]byte(`{"lat":40.4,"lng":-3.7}`)))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for location, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/location", "application/json", bytes.NewReader([]byte(`{"lat":400,"lng":-3.7}`)))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range location, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	var status StatusResponse
	decodeBody(t, resp, &status)
	if status.State == "" || status.Lane == "" {
		t.Errorf("unexpected status payload: %+v", status)
	}
}

func TestCorsMiddleware(t *testing.T) {
	ts := newTestServer(t, pipeline.Deps{Client: &stubClient{}})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/search", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
