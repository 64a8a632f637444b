package pipeline

import (
	"sync"
	"time"
)

// DefaultPageTokenDelay is the minimum age a page token must reach before
// the upstream accepts it.
const DefaultPageTokenDelay = 2 * time.Second

type pageState struct {
	token    string
	issuedAt time.Time
	inFlight bool
}

// Pagination tracks the next-page token per lane and enforces the upstream's
// minimum delay between a token being issued and being used. Acquiring a
// token marks the lane's page load in flight so concurrent loads are no-ops.
type Pagination struct {
	mu       sync.Mutex
	minDelay time.Duration
	lanes    [numLanes]pageState
	now      func() time.Time
}

// NewPagination creates a controller. A minDelay of 0 selects
// DefaultPageTokenDelay.
func NewPagination(minDelay time.Duration) *Pagination {
	if minDelay <= 0 {
		minDelay = DefaultPageTokenDelay
	}
	return &Pagination{minDelay: minDelay, now: time.Now}
}

// SetToken records a freshly issued token for a lane (empty clears it).
func (p *Pagination) SetToken(lane Lane, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lanes[lane] = pageState{token: token, issuedAt: p.now()}
}

// Reset clears a lane's token and in-flight marker. Called when a new search
// supersedes the lane.
func (p *Pagination) Reset(lane Lane) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lanes[lane] = pageState{}
}

// TryAcquire claims the lane's token for a page load. It returns the token
// and how long the caller must still wait before using it. ok is false when
// there is no token or a load is already in flight.
func (p *Pagination) TryAcquire(lane Lane) (token string, wait time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := &p.lanes[lane]
	if state.token == "" || state.inFlight {
		return "", 0, false
	}
	state.inFlight = true

	wait = state.issuedAt.Add(p.minDelay).Sub(p.now())
	if wait < 0 {
		wait = 0
	}
	return state.token, wait, true
}

// Finish completes a page load, replacing the lane's token with the next one
// (empty when the upstream has no more pages).
func (p *Pagination) Finish(lane Lane, nextToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lanes[lane] = pageState{token: nextToken, issuedAt: p.now()}
}

// Abort releases the in-flight marker without consuming the token, so a
// failed page load can be retried.
func (p *Pagination) Abort(lane Lane) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lanes[lane].inFlight = false
}
