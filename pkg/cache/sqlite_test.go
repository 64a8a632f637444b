package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T, ttl time.Duration) *SQLite {
	t.Helper()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing cache: %v", err)
		}
	})
	return c
}

func TestSQLiteRoundtrip(t *testing.T) {
	c := newTestSQLite(t, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Put("k", samplePlaces())
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].Name != "El Faro" {
		t.Errorf("unexpected places: %+v", got)
	}
	if got[0].Rating == nil || *got[0].Rating != 4.5 {
		t.Errorf("rating lost in persistence: %v", got[0].Rating)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewSQLite(path, time.Hour)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	first.Put("k", samplePlaces())
	if err := first.Close(); err != nil {
		t.Fatalf("closing first handle: %v", err)
	}

	second, err := NewSQLite(path, time.Hour)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer func() { _ = second.Close() }()

	got, ok := second.Get("k")
	if !ok || len(got) != 2 {
		t.Errorf("entry lost across reopen: %v %v", got, ok)
	}
}

func TestSQLiteExpiry(t *testing.T) {
	c := newTestSQLite(t, 5*time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("k", samplePlaces())

	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry must be treated as absent")
	}
}

func TestSQLiteSweep(t *testing.T) {
	c := newTestSQLite(t, 5*time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("old", samplePlaces())
	c.now = func() time.Time { return base.Add(4 * time.Minute) }
	c.Put("fresh", samplePlaces())

	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	if dropped := c.Sweep(); dropped != 1 {
		t.Errorf("Sweep() = %d, want 1", dropped)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("sweep should keep valid entries")
	}
}

func TestSQLiteClear(t *testing.T) {
	c := newTestSQLite(t, time.Minute)
	c.Put("a", samplePlaces())
	c.Put("b", samplePlaces())

	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("clear should drop everything")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("clear should drop everything")
	}
}

func TestSQLiteEmptyResultIsCacheable(t *testing.T) {
	c := newTestSQLite(t, time.Minute)
	c.Put("empty", nil)

	got, ok := c.Get("empty")
	if !ok {
		t.Fatal("empty result sets should still be cached")
	}
	if len(got) != 0 {
		t.Errorf("got %d places, want 0", len(got))
	}
}
