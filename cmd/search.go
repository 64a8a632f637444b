package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/lunchbox/pkg/config"
	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search restaurants by name or cuisine",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "lat",
				Usage: "Latitude to bias results towards",
			},
			&cli.FloatFlag{
				Name:  "lng",
				Usage: "Longitude to bias results towards",
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Maximum number of result pages to fetch",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use the offline mock backend",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := core.NormalizeQuery(c.Args().First())
			if query == "" {
				return fmt.Errorf("a search query is required")
			}
			loc, err := flagLocation(c)
			if err != nil {
				return err
			}
			return searchPlaces(ctx, c.String("config"), c.Bool("mock"), query, loc, int(c.Int("pages")))
		},
	}
}

// flagLocation reads the lat/lng flags. Both must be set together.
func flagLocation(c *cli.Command) (*core.Location, error) {
	latSet, lngSet := c.IsSet("lat"), c.IsSet("lng")
	if !latSet && !lngSet {
		return nil, nil
	}
	if latSet != lngSet {
		return nil, fmt.Errorf("--lat and --lng must be provided together")
	}
	loc := core.Location{Lat: c.Float("lat"), Lng: c.Float("lng")}
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return nil, fmt.Errorf("coordinates out of range")
	}
	return &loc, nil
}

func searchPlaces(ctx context.Context, configPath string, mock bool, query string, loc *core.Location, maxPages int) error {
	cfg, err := loadConfig(configPath, mock)
	if err != nil {
		return err
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	results, fromCache, err := runPaged(ctx, cfg, deps, pipeline.Request{
		Lane:         pipeline.LaneText,
		Query:        query,
		Location:     loc,
		RadiusMeters: cfg.RadiusMeters,
	}, maxPages)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}

	renderPlaces(query, results, loc, fromCache)
	return nil
}

// runPaged runs a search cycle and follows next-page tokens up to maxPages,
// honoring the upstream's minimum token age between pages.
func runPaged(ctx context.Context, cfg *config.Config, deps pipeline.Deps, req pipeline.Request, maxPages int) ([]core.Place, bool, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	var all []core.Place
	fromCache := false
	for page := 0; page < maxPages; page++ {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout(cfg))
		res, err := pipeline.Execute(reqCtx, deps, req)
		cancel()
		if err != nil {
			if page > 0 {
				logger.Warnf("page %d failed, returning partial results: %v", page+1, err)
				break
			}
			return nil, false, err
		}

		all = append(all, res.Places...)
		fromCache = fromCache || res.FromCache
		if res.NextPageToken == "" {
			break
		}
		req.PageToken = res.NextPageToken

		if page < maxPages-1 {
			timer := time.NewTimer(cfg.PageTokenDelay.Duration)
			select {
			case <-ctx.Done():
				timer.Stop()
				return all, fromCache, nil
			case <-timer.C:
			}
		}
	}

	return dedupePlaces(all, deps), fromCache, nil
}

// dedupePlaces removes duplicate IDs across page boundaries, keeping the
// first occurrence, and refreshes the favorite overlay.
func dedupePlaces(placeList []core.Place, deps pipeline.Deps) []core.Place {
	var favs map[string]bool
	if deps.Favorites != nil {
		favs = deps.Favorites.FavoriteIDs()
	}

	seen := make(map[string]bool, len(placeList))
	out := make([]core.Place, 0, len(placeList))
	for _, p := range placeList {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		p.IsFavorite = favs[p.ID]
		out = append(out, p)
	}
	return out
}
