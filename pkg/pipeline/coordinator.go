// Package pipeline implements the search aggregation pipeline: query
// debouncing, location throttling, the per-lane search state machine with
// generation-counted cancellation, pagination and favorite overlay.
//
// All mutable pipeline state is owned by the Coordinator and guarded by a
// single mutex; network and cache work runs on background goroutines and
// only the final state mutation takes the lock. Consumers observe the
// pipeline through the realtime hub or Snapshot.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/log"
	"github.com/rubiojr/lunchbox/pkg/merge"
	"github.com/rubiojr/lunchbox/pkg/realtime"
)

// DefaultRadiusMeters is the nearby search radius.
const DefaultRadiusMeters = 1500

// Config tunes the pipeline timings. Zero values select the defaults.
type Config struct {
	RadiusMeters   int
	DebounceQuiet  time.Duration
	ThrottleWindow time.Duration
	MinMoveMeters  float64
	PageTokenDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = DefaultRadiusMeters
	}
	if c.DebounceQuiet <= 0 {
		c.DebounceQuiet = DefaultDebounceQuiet
	}
	if c.ThrottleWindow <= 0 {
		c.ThrottleWindow = DefaultThrottleWindow
	}
	if c.MinMoveMeters <= 0 {
		c.MinMoveMeters = DefaultMinMoveMeters
	}
	if c.PageTokenDelay <= 0 {
		c.PageTokenDelay = DefaultPageTokenDelay
	}
	return c
}

// laneRuntime is the cancellation scope of the lane's current search cycle.
type laneRuntime struct {
	ctx    context.Context
	cancel context.CancelFunc
	reqID  string
}

// Coordinator orchestrates the pipeline. Raw query edits and location fixes
// go in through SetQuery/SetLocation; deduplicated, favorite-annotated
// results and status transitions come out through the hub.
//
// For each lane only the most recently triggered search may mutate visible
// state: every trigger bumps the lane's generation counter and a completion
// whose generation is no longer current is discarded.
type Coordinator struct {
	cfg        Config
	deps       Deps
	hub        *realtime.Hub
	debouncer  *Debouncer
	throttler  *Throttler
	pagination *Pagination
	logger     *log.Logger

	mu       sync.Mutex
	status   Status
	places   []core.Place
	location *core.Location
	query    string
	gens     [numLanes]uint64
	runtimes [numLanes]*laneRuntime

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// NewCoordinator creates a coordinator. Start must be called before feeding
// it input.
func NewCoordinator(cfg Config, deps Deps) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:        cfg,
		deps:       deps,
		hub:        realtime.NewHub(0),
		pagination: NewPagination(cfg.PageTokenDelay),
		logger:     log.ForComponent("pipeline"),
	}
}

// Start launches the coordinator's event loop.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("coordinator is already running")
	}
	c.baseCtx, c.cancelBase = context.WithCancel(ctx)
	c.debouncer = NewDebouncer(c.cfg.DebounceQuiet)
	c.throttler = NewThrottler(c.cfg.ThrottleWindow, c.cfg.MinMoveMeters)
	c.running = true

	c.wg.Add(1)
	go c.run()

	c.logger.Infof("pipeline started (radius %dm, debounce %v, throttle %v)",
		c.cfg.RadiusMeters, c.cfg.DebounceQuiet, c.cfg.ThrottleWindow)
	return nil
}

// Stop cancels all in-flight work and waits for the event loop to exit.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.cancelBase()
	debouncer, throttler := c.debouncer, c.throttler
	c.mu.Unlock()

	debouncer.Stop()
	throttler.Stop()
	c.wg.Wait()
	c.logger.Infof("pipeline stopped")
}

// SetQuery feeds a raw query edit into the debouncer.
func (c *Coordinator) SetQuery(raw string) {
	select {
	case c.debouncer.Input() <- raw:
	case <-c.baseCtx.Done():
	}
}

// SetLocation feeds a raw location fix into the throttler.
func (c *Coordinator) SetLocation(loc core.Location) {
	select {
	case c.throttler.Input() <- loc:
	case <-c.baseCtx.Done():
	}
}

// ReportLocationDenied short-circuits the nearby lane: no location will
// come, so the lane fails immediately with a distinct error the caller can
// turn into a permission prompt.
func (c *Coordinator) ReportLocationDenied() {
	c.mu.Lock()
	c.supersede(LaneNearby)
	c.location = nil
	c.status = Status{State: StateFailed, Lane: LaneNearby, Err: core.ErrLocationPermissionDenied}
	update := c.updateLocked(uuid.New().String())
	c.mu.Unlock()

	c.hub.Publish(update)
}

// Subscribe registers a listener for pipeline updates.
func (c *Coordinator) Subscribe() (uint64, <-chan realtime.Update) {
	return c.hub.Subscribe()
}

// Unsubscribe removes a listener.
func (c *Coordinator) Unsubscribe(id uint64) {
	c.hub.Unsubscribe(id)
}

// Snapshot returns the current status and visible places.
func (c *Coordinator) Snapshot() (Status, []core.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, core.ClonePlaces(c.places)
}

// ToggleFavorite flips the favorite state of a place and republishes the
// current results with the overlay refreshed. No network call is made.
func (c *Coordinator) ToggleFavorite(id string) (bool, error) {
	if c.deps.Favorites == nil {
		return false, fmt.Errorf("no favorite store configured")
	}
	state, err := c.deps.Favorites.Toggle(id)
	if err != nil {
		return state, fmt.Errorf("toggling favorite %s: %w", id, err)
	}

	c.mu.Lock()
	favs := c.deps.Favorites.FavoriteIDs()
	for i := range c.places {
		c.places[i].IsFavorite = favs[c.places[i].ID]
	}
	update := c.updateLocked(uuid.New().String())
	c.mu.Unlock()

	c.hub.Publish(update)
	return state, nil
}

// LoadNextPage requests the next page for the lane of the last successful
// search. It is a no-op when there is no token or a page load is already in
// flight. The upstream's minimum token age is waited out before dispatch;
// the new page is appended to the visible results.
func (c *Coordinator) LoadNextPage() {
	c.mu.Lock()
	if c.status.State != StateSucceeded {
		c.mu.Unlock()
		return
	}
	lane := c.status.Lane
	gen := c.gens[lane]
	rt := c.runtimes[lane]
	req := Request{
		Lane:         lane,
		Query:        c.query,
		Location:     c.location,
		RadiusMeters: c.cfg.RadiusMeters,
	}
	c.mu.Unlock()

	if rt == nil {
		return
	}
	token, wait, ok := c.pagination.TryAcquire(lane)
	if !ok {
		return
	}
	req.PageToken = token

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-rt.ctx.Done():
				timer.Stop()
				c.pagination.Abort(lane)
				return
			case <-timer.C:
			}
		}

		res, err := Execute(rt.ctx, c.deps, req)
		c.applyPage(lane, gen, rt.reqID, res, err)
	}()
}

// run is the coordinator event loop: it consumes debounced queries and
// throttled locations and triggers searches.
func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.baseCtx.Done():
			return

		case query, ok := <-c.debouncer.Output():
			if !ok {
				return
			}
			c.mu.Lock()
			c.query = query
			loc := c.location
			c.mu.Unlock()

			if query == "" {
				if loc != nil {
					c.trigger(LaneNearby, "", loc)
				}
				continue
			}
			c.trigger(LaneText, query, loc)

		case loc, ok := <-c.throttler.Output():
			if !ok {
				return
			}
			c.mu.Lock()
			moved := loc
			c.location = &moved
			query := c.query
			c.mu.Unlock()

			// A location change re-runs the nearby lane; an active text
			// search keeps its original bias until re-triggered.
			if query == "" {
				c.trigger(LaneNearby, "", &moved)
			}
		}
	}
}

// trigger starts a new search cycle in a lane, superseding any in-flight
// one.
func (c *Coordinator) trigger(lane Lane, query string, loc *core.Location) {
	c.mu.Lock()
	gen := c.supersede(lane)
	ctx, cancel := context.WithCancel(c.baseCtx)
	rt := &laneRuntime{ctx: ctx, cancel: cancel, reqID: uuid.New().String()}
	c.runtimes[lane] = rt
	c.pagination.Reset(lane)
	c.status = Status{State: StateLoading, Lane: lane}
	update := c.updateLocked(rt.reqID)
	req := Request{
		Lane:         lane,
		Query:        query,
		Location:     loc,
		RadiusMeters: c.cfg.RadiusMeters,
	}
	c.mu.Unlock()

	c.hub.Publish(update)
	c.logger.Debugf("search %s triggered on %s lane (query=%q)", rt.reqID, lane, query)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := Execute(ctx, c.deps, req)
		c.apply(lane, gen, rt.reqID, res, err)
	}()
}

// supersede bumps the lane generation and cancels its in-flight cycle.
// Callers must hold c.mu. Returns the new generation.
func (c *Coordinator) supersede(lane Lane) uint64 {
	c.gens[lane]++
	if rt := c.runtimes[lane]; rt != nil {
		rt.cancel()
		c.runtimes[lane] = nil
	}
	return c.gens[lane]
}

// apply installs a completed search cycle, unless it has been superseded.
func (c *Coordinator) apply(lane Lane, gen uint64, reqID string, res *Result, err error) {
	c.mu.Lock()
	if gen != c.gens[lane] {
		c.mu.Unlock()
		c.logger.Debugf("search %s superseded, result discarded", reqID)
		return
	}
	if err != nil && core.IsCancelled(err) {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.status = Status{State: StateFailed, Lane: lane, Err: err}
	} else {
		c.places = res.Places
		c.pagination.SetToken(lane, res.NextPageToken)
		c.status = Status{
			State:     StateSucceeded,
			Lane:      lane,
			Count:     len(res.Places),
			FromCache: res.FromCache,
		}
	}
	update := c.updateLocked(reqID)
	c.mu.Unlock()

	c.hub.Publish(update)
	if err != nil {
		c.logger.Warnf("search %s failed: %v", reqID, err)
	} else {
		c.logger.Infof("search %s succeeded with %d places (from_cache=%v)",
			reqID, update.Count, update.FromCache)
	}
}

// applyPage appends a completed page load to the visible results.
func (c *Coordinator) applyPage(lane Lane, gen uint64, reqID string, res *Result, err error) {
	c.mu.Lock()
	if gen != c.gens[lane] {
		c.mu.Unlock()
		return
	}
	if err != nil && core.IsCancelled(err) {
		c.pagination.Abort(lane)
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.pagination.Abort(lane)
		c.status = Status{State: StateFailed, Lane: lane, Err: err}
	} else {
		combined := append(core.ClonePlaces(c.places), res.Places...)
		c.places = merge.Places(combined, nil, favoriteIDs(c.deps))
		c.pagination.Finish(lane, res.NextPageToken)
		c.status = Status{
			State: StateSucceeded,
			Lane:  lane,
			Count: len(c.places),
		}
	}
	update := c.updateLocked(reqID)
	c.mu.Unlock()

	c.hub.Publish(update)
}

// updateLocked builds the published update for the current state. Callers
// must hold c.mu.
func (c *Coordinator) updateLocked(reqID string) realtime.Update {
	update := realtime.Update{
		RequestID: reqID,
		Lane:      c.status.Lane.String(),
		State:     c.status.State.String(),
		Count:     c.status.Count,
		FromCache: c.status.FromCache,
		Timestamp: time.Now(),
	}
	if c.status.Err != nil {
		update.Error = c.status.Err.Error()
	}
	if c.status.State == StateSucceeded {
		update.Places = core.ClonePlaces(c.places)
	}
	return update
}
