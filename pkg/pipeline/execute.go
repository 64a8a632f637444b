package pipeline

import (
	"context"
	"fmt"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/merge"
)

// Deps bundles the collaborators a search cycle needs. Cache and Favorites
// may be nil; the pipeline then runs uncached and without favorite overlay.
type Deps struct {
	Client    core.SearchClient
	Cache     core.ResultCache
	Favorites core.FavoriteStore
}

// Request describes one search cycle.
type Request struct {
	Lane         Lane
	Query        string
	Location     *core.Location
	RadiusMeters int
	// PageToken requests the next page of a prior search. Page loads skip
	// the cache entirely.
	PageToken string
}

// Result is a completed search cycle.
type Result struct {
	Places        []core.Place
	NextPageToken string
	// FromCache marks a result served from the cache because the network
	// search failed.
	FromCache bool
}

// Execute runs one search cycle: the network search and the cache read in
// parallel, then a merge with the current favorite set.
//
// The cache is read-through and advisory. When the network succeeds, cached
// places fill gaps in the fresh page and the network results are written
// back to the cache. When the network fails but a valid cache entry exists,
// the cycle degrades to a cache-only success with FromCache set. Cancelled
// cycles return the cancellation unchanged so callers can discard them
// silently.
func Execute(ctx context.Context, deps Deps, req Request) (*Result, error) {
	if req.Lane == LaneNearby && req.Location == nil {
		return nil, fmt.Errorf("nearby search without a location: %w", core.ErrLocationPermissionDenied)
	}

	type cacheRead struct {
		places []core.Place
		hit    bool
	}

	var key string
	cacheCh := make(chan cacheRead, 1)
	usable := deps.Cache != nil && req.PageToken == ""
	if usable {
		var at core.Location
		if req.Location != nil {
			at = *req.Location
		}
		key = core.CacheKey(req.Query, at, req.RadiusMeters)
		go func() {
			places, hit := deps.Cache.Get(key)
			cacheCh <- cacheRead{places: places, hit: hit}
		}()
	} else {
		cacheCh <- cacheRead{}
	}

	page, err := search(ctx, deps.Client, req)
	cached := <-cacheCh

	if err != nil {
		if core.IsCancelled(err) {
			return nil, err
		}
		if cached.hit {
			return &Result{
				Places:    merge.Places(nil, cached.places, favoriteIDs(deps)),
				FromCache: true,
			}, nil
		}
		return nil, err
	}

	if usable {
		deps.Cache.Put(key, page.Places)
	}
	return &Result{
		Places:        merge.Places(page.Places, cached.places, favoriteIDs(deps)),
		NextPageToken: page.NextPageToken,
	}, nil
}

func search(ctx context.Context, client core.SearchClient, req Request) (*core.SearchPage, error) {
	if req.Lane == LaneText {
		return client.SearchText(ctx, req.Query, req.Location, req.PageToken)
	}
	return client.SearchNearby(ctx, *req.Location, req.RadiusMeters, req.PageToken)
}

func favoriteIDs(deps Deps) map[string]bool {
	if deps.Favorites == nil {
		return nil
	}
	return deps.Favorites.FavoriteIDs()
}
