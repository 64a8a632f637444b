package core

import "context"

// SearchPage is one page of search results plus the opaque token for the
// next page, if the upstream issued one.
type SearchPage struct {
	Places        []Place
	NextPageToken string
}

// SearchClient issues a single search request against an upstream places
// API. Implementations own their timeout and retry behavior: by the time a
// call returns an error, transient failures have already been retried.
//
// Implementations must not mutate the cache or the favorite store; the
// pipeline coordinator owns those side effects.
type SearchClient interface {
	// SearchNearby finds places around a coordinate within radiusMeters.
	// pageToken, if non-empty, requests the next page of a prior search.
	SearchNearby(ctx context.Context, loc Location, radiusMeters int, pageToken string) (*SearchPage, error)

	// SearchText finds places matching a free-text query. loc, if non-nil,
	// biases results towards that coordinate.
	SearchText(ctx context.Context, query string, loc *Location, pageToken string) (*SearchPage, error)

	// GetDetails fetches the full record for a single place. Details are
	// independent of the search flow: never paginated, never cached.
	GetDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
}

// ResultCache maps a search key (see CacheKey) to a time-bounded snapshot of
// places. The cache is advisory: a no-op implementation changes latency and
// offline behavior, never correctness. Expired entries are treated as absent
// and must never be served.
//
// Implementations must be safe for concurrent use; the nearby and text lanes
// may read and write simultaneously. Writes are last-write-wins per key.
type ResultCache interface {
	// Get returns the cached places for key if a valid (unexpired) entry
	// exists.
	Get(key string) ([]Place, bool)

	// Put stores places under key with the current timestamp, overwriting
	// any prior entry.
	Put(key string, places []Place)

	// Clear drops every entry.
	Clear()

	Close() error
}

// FavoriteStore owns the set of favorited place IDs. Toggles must be visible
// to the very next merge: the pipeline re-reads the set on every publish.
type FavoriteStore interface {
	// FavoriteIDs returns a snapshot of the favorited IDs.
	FavoriteIDs() map[string]bool

	// IsFavorite reports whether a single place is favorited.
	IsFavorite(id string) bool

	// Toggle flips the favorite state of id, persisting the change and
	// updating the in-memory set atomically. It returns the new state.
	Toggle(id string) (bool, error)

	Close() error
}
