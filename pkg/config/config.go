package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config is the application configuration, loaded from a TOML file.
type Config struct {
	// APIKey authenticates against the places API. Empty together with
	// Mock=false means searches fail with a credentials error.
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url,omitempty"`
	Mock       bool   `toml:"mock"`
	StorageDir string `toml:"storage_dir"`

	RadiusMeters   int      `toml:"radius_meters"`
	RequestTimeout Duration `toml:"request_timeout"`
	MockTimeout    Duration `toml:"mock_timeout"`
	CacheTTL       Duration `toml:"cache_ttl"`
	RateLimit      int      `toml:"rate_limit"`

	DebounceInterval Duration `toml:"debounce_interval"`
	ThrottleWindow   Duration `toml:"throttle_window"`
	MinMoveMeters    float64  `toml:"min_move_meters"`
	PageTokenDelay   Duration `toml:"page_token_delay"`
}

// Duration wraps time.Duration so it round-trips through TOML as a string
// like "30s" or "5m".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values with the defaults. APIKey and Mock stay
// as given.
func (c *Config) applyDefaults() {
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = 1500
	}
	if c.RequestTimeout.Duration <= 0 {
		c.RequestTimeout = Duration{30 * time.Second}
	}
	if c.MockTimeout.Duration <= 0 {
		c.MockTimeout = Duration{5 * time.Second}
	}
	if c.CacheTTL.Duration <= 0 {
		c.CacheTTL = Duration{5 * time.Minute}
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.DebounceInterval.Duration <= 0 {
		c.DebounceInterval = Duration{500 * time.Millisecond}
	}
	if c.ThrottleWindow.Duration <= 0 {
		c.ThrottleWindow = Duration{2 * time.Second}
	}
	if c.MinMoveMeters <= 0 {
		c.MinMoveMeters = 10
	}
	if c.PageTokenDelay.Duration <= 0 {
		c.PageTokenDelay = Duration{2 * time.Second}
	}
}

// LoadConfig reads the config file at configPath. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes a commented sample config to configPath.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/lunchbox", storageDir, 1)
	return template, nil
}

// CachePath returns the search cache database path under the storage
// directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.StorageDir, "cache.db")
}

// FavoritesPath returns the favorites database path under the storage
// directory.
func (c *Config) FavoritesPath() string {
	return filepath.Join(c.StorageDir, "favorites.db")
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, "lunchbox")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appConfigDir := filepath.Join(configDir, "lunchbox")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", appConfigDir, err)
	}

	return appConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
