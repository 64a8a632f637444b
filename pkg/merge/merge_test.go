package merge

import (
	"testing"

	"github.com/rubiojr/lunchbox/pkg/core"
)

func place(id, name string) core.Place {
	return core.Place{ID: id, Name: name}
}

func ids(places []core.Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func TestNetworkPrecedence(t *testing.T) {
	network := []core.Place{place("a", "Fresh A"), place("b", "Fresh B")}
	cached := []core.Place{place("a", "Stale A"), place("c", "Cached C")}

	got := Places(network, cached, nil)

	if len(got) != 3 {
		t.Fatalf("got %d places, want 3", len(got))
	}
	if got[0].Name != "Fresh A" {
		t.Errorf("network copy should win for shared ID, got %q", got[0].Name)
	}
	if got[2].ID != "c" {
		t.Errorf("cache should fill gaps, got order %v", ids(got))
	}
}

func TestDedupInvariant(t *testing.T) {
	network := []core.Place{place("a", "A"), place("a", "A again"), place("b", "B")}
	cached := []core.Place{place("b", "B cached"), place("b", "B cached again")}

	got := Places(network, cached, nil)

	seen := make(map[string]bool)
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate id %q in output %v", p.ID, ids(got))
		}
		seen[p.ID] = true
	}
	if got[0].Name != "A" {
		t.Error("first occurrence should be kept")
	}
}

func TestFavoriteOverlayIsUnconditional(t *testing.T) {
	network := []core.Place{
		{ID: "a", Name: "A", IsFavorite: true}, // stale flag from upstream
		{ID: "b", Name: "B"},
	}
	cached := []core.Place{
		{ID: "c", Name: "C", IsFavorite: true}, // stale flag from cache
	}
	favorites := map[string]bool{"b": true}

	got := Places(network, cached, favorites)

	for _, p := range got {
		want := favorites[p.ID]
		if p.IsFavorite != want {
			t.Errorf("place %s: IsFavorite = %v, want %v", p.ID, p.IsFavorite, want)
		}
	}
}

func TestMergeIdempotence(t *testing.T) {
	favorites := map[string]bool{"a": true}
	network := []core.Place{place("a", "A"), place("b", "B")}
	cached := []core.Place{place("c", "C")}

	once := Places(network, cached, favorites)
	twice := Places(once, nil, favorites)

	if len(once) != len(twice) {
		t.Fatalf("lengths differ: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || once[i].IsFavorite != twice[i].IsFavorite {
			t.Errorf("entry %d differs: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMergeWithoutNetwork(t *testing.T) {
	cached := []core.Place{place("a", "A"), place("b", "B")}
	got := Places(nil, cached, map[string]bool{"b": true})

	if len(got) != 2 {
		t.Fatalf("got %d places, want 2", len(got))
	}
	if !got[1].IsFavorite {
		t.Error("overlay should apply to cache-only results too")
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	network := []core.Place{place("a", "A")}
	cached := []core.Place{place("b", "B")}

	got := Places(network, cached, map[string]bool{"a": true, "b": true})
	got[0].Name = "mutated"

	if network[0].Name != "A" || network[0].IsFavorite {
		t.Error("network input was mutated")
	}
	if cached[0].IsFavorite {
		t.Error("cached input was mutated")
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	if got := Places(nil, nil, nil); len(got) != 0 {
		t.Errorf("merging nothing should yield nothing, got %v", got)
	}
}
