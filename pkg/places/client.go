// Package places implements the upstream search client for the pipeline.
//
// The client speaks the Google Places legacy web service protocol (nearby
// search, text search, details) and owns per-request timeouts, client-side
// rate limiting and retry with exponential backoff. A mock implementation
// for offline use lives in mock.go.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL of the places web service.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default client-side rate limit in requests
	// per second.
	DefaultRateLimit = 10
)

// Client is a places API client. It implements core.SearchClient.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *log.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryPolicy sets a custom retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithRateLimit sets the client-side rate limit in requests per second.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a places client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		retry:   DefaultRetryPolicy(),
		logger:  log.ForComponent("places"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// SearchNearby finds places around loc within radiusMeters.
func (c *Client) SearchNearby(ctx context.Context, loc core.Location, radiusMeters int, pageToken string) (*core.SearchPage, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", loc.Lat, loc.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("type", "restaurant")
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var payload searchResponse
	if err := c.get(ctx, "nearbysearch/json", params, &payload); err != nil {
		return nil, fmt.Errorf("searching nearby: %w", err)
	}
	return &core.SearchPage{
		Places:        toPlaces(payload.Results),
		NextPageToken: payload.NextPageToken,
	}, nil
}

// SearchText finds places matching query, optionally biased towards loc.
func (c *Client) SearchText(ctx context.Context, query string, loc *core.Location, pageToken string) (*core.SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	if loc != nil {
		params.Set("location", fmt.Sprintf("%f,%f", loc.Lat, loc.Lng))
	}
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var payload searchResponse
	if err := c.get(ctx, "textsearch/json", params, &payload); err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}
	return &core.SearchPage{
		Places:        toPlaces(payload.Results),
		NextPageToken: payload.NextPageToken,
	}, nil
}

// GetDetails fetches the full record for one place.
func (c *Client) GetDetails(ctx context.Context, placeID string) (*core.PlaceDetail, error) {
	params := url.Values{}
	params.Set("place_id", placeID)

	var payload detailsResponse
	if err := c.get(ctx, "details/json", params, &payload); err != nil {
		return nil, fmt.Errorf("fetching details for %s: %w", placeID, err)
	}
	return payload.Result.toDetail(), nil
}

// statusField lets get inspect the payload status of any response type.
type statusField interface {
	status() (code, message string)
}

func (r *searchResponse) status() (string, string)  { return r.Status, r.ErrorMessage }
func (r *detailsResponse) status() (string, string) { return r.Status, r.ErrorMessage }

// get performs a GET request against the given endpoint, retrying transient
// failures per the client's retry policy. The payload status is checked as
// part of each attempt so upstream rate-limit statuses are retried too.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out statusField) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	return c.retry.Execute(ctx, c.logger, func() error {
		return c.attempt(ctx, reqURL, out)
	})
}

// attempt performs a single HTTP round trip and classifies its outcome into
// the pipeline error taxonomy.
func (c *Client) attempt(ctx context.Context, reqURL string, out statusField) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			// The caller's context was cancelled or timed out, not ours.
			return ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return fmt.Errorf("%w after %v", core.ErrTimeout, c.timeout)
		default:
			return fmt.Errorf("%w: %v", core.ErrNetworkUnavailable, err)
		}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("failed to close response body: %v", err)
		}
	}()

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDecode, err)
	}

	return classifyPayloadStatus(out)
}

func classifyHTTPStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: http %d", core.ErrInvalidCredentials, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d", core.ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: http %d", core.ErrNetworkUnavailable, code)
	default:
		return &core.UpstreamError{Code: fmt.Sprintf("HTTP_%d", code)}
	}
}

func classifyPayloadStatus(out statusField) error {
	code, message := out.status()
	switch code {
	case statusOK, statusZeroResults:
		return nil
	case statusOverQueryLimit:
		return fmt.Errorf("%w: %s", core.ErrRateLimited, message)
	case statusRequestDenied:
		return fmt.Errorf("%w: %s", core.ErrInvalidCredentials, message)
	default:
		return &core.UpstreamError{Code: code, Message: message}
	}
}
