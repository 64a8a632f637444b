// Package merge combines network and cached search results into a single
// deduplicated, favorite-annotated list. Merge is a pure function: inputs
// are never mutated and the output shares no memory with them.
package merge

import "github.com/rubiojr/lunchbox/pkg/core"

// Places merges network and cached results.
//
// Network results are authoritative and come first. Cached places whose ID
// is not already present are appended afterwards; this keeps previously seen
// places (favorites in particular) visible when a fresh network page happens
// not to include them. A cached copy never overrides the network copy of the
// same ID.
//
// The favorite flag on every entry is set from favoriteIDs, unconditionally:
// favorite state is owned by the favorite store, never trusted from a cached
// or upstream copy.
func Places(network, cached []core.Place, favoriteIDs map[string]bool) []core.Place {
	out := make([]core.Place, 0, len(network)+len(cached))
	seen := make(map[string]bool, len(network)+len(cached))

	for _, p := range network {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p.Clone())
	}
	for _, p := range cached {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p.Clone())
	}

	for i := range out {
		out[i].IsFavorite = favoriteIDs[out[i].ID]
	}
	return out
}
