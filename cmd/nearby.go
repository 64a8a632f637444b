package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/pipeline"
)

// NearbyCommand creates the nearby command
func NearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List restaurants around a location",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:     "lat",
				Usage:    "Latitude of the search center",
				Required: true,
			},
			&cli.FloatFlag{
				Name:     "lng",
				Usage:    "Longitude of the search center",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "radius",
				Usage: "Search radius in meters (0 uses the configured default)",
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
			loc, err := flagLocation(c)
			if err != nil {
				return err
			}
			return nearbyPlaces(ctx, c.String("config"), c.Bool("mock"), *loc, int(c.Int("radius")), int(c.Int("pages")))
		},
	}
}

func nearbyPlaces(ctx context.Context, configPath string, mock bool, loc core.Location, radius, maxPages int) error {
	cfg, err := loadConfig(configPath, mock)
	if err != nil {
		return err
	}
	if radius <= 0 {
		radius = cfg.RadiusMeters
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	results, fromCache, err := runPaged(ctx, cfg, deps, pipeline.Request{
		Lane:         pipeline.LaneNearby,
		Location:     &loc,
		RadiusMeters: radius,
	}, maxPages)
	if err != nil {
		return fmt.Errorf("searching around %.4f,%.4f: %w", loc.Lat, loc.Lng, err)
	}

	renderPlaces(fmt.Sprintf("restaurants within %dm", radius), results, &loc, fromCache)
	return nil
}
