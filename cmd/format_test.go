package cmd

import (
	"testing"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/favorites"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

func TestFormatRating(t *testing.T) {
	if got := formatRating(nil); got != "unrated" {
		t.Errorf("expected unrated for nil rating, got %q", got)
	}

	r := 4.2
	got := formatRating(&r)
	if got != "★★★★☆ 4.2" {
		t.Errorf("unexpected rating format: %q", got)
	}

	high := 5.0
	if got := formatRating(&high); got != "★★★★★ 5.0" {
		t.Errorf("unexpected rating format: %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(nil); got != "" {
		t.Errorf("expected empty for nil price level, got %q", got)
	}
	level := 3
	if got := formatPrice(&level); got != "€€€" {
		t.Errorf("unexpected price format: %q", got)
	}
	over := 9
	if got := formatPrice(&over); got != "€€€€" {
		t.Errorf("price level should cap at 4, got %q", got)
	}
}

func TestFormatDistance(t *testing.T) {
	if got := formatDistance(420); got != "420m" {
		t.Errorf("unexpected distance format: %q", got)
	}
	if got := formatDistance(2340); got != "2.3km" {
		t.Errorf("unexpected distance format: %q", got)
	}
}

func TestDedupePlacesAcrossPages(t *testing.T) {
	favs := favorites.NewMemory()
	if _, err := favs.Toggle("b"); err != nil {
		t.Fatal(err)
	}
	deps := pipeline.Deps{Favorites: favs}

	in := []core.Place{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
		{ID: "a", Name: "Alpha Again"},
		{ID: "c", Name: "Gamma"},
	}
	out := dedupePlaces(in, deps)

	if len(out) != 3 {
		t.Fatalf("expected 3 unique places, got %d", len(out))
	}
	if out[0].Name != "Alpha" {
		t.Errorf("first occurrence should win, got %q", out[0].Name)
	}
	if !out[1].IsFavorite || out[0].IsFavorite || out[2].IsFavorite {
		t.Error("favorite overlay not applied during dedupe")
	}
}
