package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ShowCommand creates the show command
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show details for a single place",
		ArgsUsage: "<place-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Use the offline mock backend",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			placeID := c.Args().First()
			if placeID == "" {
				return fmt.Errorf("a place ID is required")
			}
			return showPlace(ctx, c.String("config"), c.Bool("mock"), placeID)
		},
	}
}

func showPlace(ctx context.Context, configPath string, mock bool, placeID string) error {
	cfg, err := loadConfig(configPath, mock)
	if err != nil {
		return err
	}

	deps, cleanup, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout(cfg))
	defer cancel()

	detail, err := deps.Client.GetDetails(reqCtx, placeID)
	if err != nil {
		return fmt.Errorf("fetching details for %s: %w", placeID, err)
	}
	detail.IsFavorite = deps.Favorites.IsFavorite(detail.ID)

	renderDetail(detail)
	return nil
}
