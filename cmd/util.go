package cmd

import (
	"fmt"
	"time"

	"github.com/rubiojr/lunchbox/pkg/cache"
	"github.com/rubiojr/lunchbox/pkg/config"
	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/favorites"
	"github.com/rubiojr/lunchbox/pkg/log"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
	"github.com/rubiojr/lunchbox/pkg/places"
)

var logger = log.ForComponent("cmd")

// buildDeps assembles the search client, cache and favorite store from the
// configuration. The returned cleanup closes the stores.
func buildDeps(cfg *config.Config) (pipeline.Deps, func(), error) {
	var client core.SearchClient
	if cfg.Mock {
		client = places.NewMockClient()
	} else {
		if cfg.APIKey == "" {
			return pipeline.Deps{}, nil, fmt.Errorf("no api_key configured; set one or enable mock mode")
		}
		opts := []places.Option{
			places.WithTimeout(cfg.RequestTimeout.Duration),
			places.WithRateLimit(cfg.RateLimit),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, places.WithBaseURL(cfg.BaseURL))
		}
		client = places.NewClient(cfg.APIKey, opts...)
	}

	resultCache, err := cache.NewSQLite(cfg.CachePath(), cfg.CacheTTL.Duration)
	if err != nil {
		return pipeline.Deps{}, nil, fmt.Errorf("opening result cache: %w", err)
	}

	favoriteStore, err := favorites.NewSQLite(cfg.FavoritesPath())
	if err != nil {
		if cerr := resultCache.Close(); cerr != nil {
			logger.Warnf("closing result cache: %v", cerr)
		}
		return pipeline.Deps{}, nil, fmt.Errorf("opening favorite store: %w", err)
	}

	cleanup := func() {
		if err := favoriteStore.Close(); err != nil {
			logger.Warnf("closing favorite store: %v", err)
		}
		if err := resultCache.Close(); err != nil {
			logger.Warnf("closing result cache: %v", err)
		}
	}

	return pipeline.Deps{
		Client:    client,
		Cache:     resultCache,
		Favorites: favoriteStore,
	}, cleanup, nil
}

// requestTimeout returns the per-request deadline for one-shot commands.
func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.Mock {
		return cfg.MockTimeout.Duration
	}
	return cfg.RequestTimeout.Duration
}

func loadConfig(configPath string, mock bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if mock {
		cfg.Mock = true
	}
	return cfg, nil
}
