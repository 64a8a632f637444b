package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("loading missing config: %v", err)
	}
	if cfg.RadiusMeters != 1500 {
		t.Errorf("expected default radius 1500, got %d", cfg.RadiusMeters)
	}
	if cfg.RequestTimeout.Duration != 30*time.Second {
		t.Errorf("expected default request timeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.CacheTTL.Duration != 5*time.Minute {
		t.Errorf("expected default cache TTL 5m, got %v", cfg.CacheTTL)
	}
	if cfg.DebounceInterval.Duration != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.DebounceInterval)
	}
	if cfg.Mock {
		t.Error("mock must default to off")
	}
}

func TestLoadConfigParsesDurationsAndFillsGaps(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
api_key = "test-key"
mock = true
radius_meters = 800
cache_ttl = "90s"
throttle_window = "3s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.APIKey != "test-key" || !cfg.Mock {
		t.Errorf("unexpected credentials: key=%q mock=%v", cfg.APIKey, cfg.Mock)
	}
	if cfg.RadiusMeters != 800 {
		t.Errorf("expected radius 800, got %d", cfg.RadiusMeters)
	}
	if cfg.CacheTTL.Duration != 90*time.Second {
		t.Errorf("expected cache TTL 90s, got %v", cfg.CacheTTL)
	}
	if cfg.ThrottleWindow.Duration != 3*time.Second {
		t.Errorf("expected throttle window 3s, got %v", cfg.ThrottleWindow)
	}
	// Unset keys still get defaults.
	if cfg.RequestTimeout.Duration != 30*time.Second {
		t.Errorf("expected default request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.StorageDir == "" {
		t.Error("storage dir should be defaulted")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`cache_ttl = "soon"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := &Config{
		APIKey:     "k",
		StorageDir: dir,
		CacheTTL:   Duration{2 * time.Minute},
	}
	cfg.applyDefaults()
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if loaded.APIKey != "k" || loaded.CacheTTL.Duration != 2*time.Minute {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestStoragePaths(t *testing.T) {
	cfg := &Config{StorageDir: "/data/lunchbox"}
	if got := cfg.CachePath(); got != filepath.Join("/data/lunchbox", "cache.db") {
		t.Errorf("unexpected cache path %q", got)
	}
	if got := cfg.FavoritesPath(); got != filepath.Join("/data/lunchbox", "favorites.db") {
		t.Errorf("unexpected favorites path %q", got)
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{StorageDir: dir}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("saving template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), dir) {
		t.Error("template should embed the storage dir")
	}
	if !strings.Contains(string(data), "debounce_interval") {
		t.Error("template should document the pipeline knobs")
	}
}
