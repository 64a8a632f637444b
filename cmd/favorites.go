package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/lunchbox/pkg/favorites"
)

// FavoritesCommand creates the favorites command
func FavoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Manage favorite places",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorite place IDs",
				Action: func(ctx context.Context, c *cli.Command) error {
					return listFavorites(c.String("config"))
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle the favorite state of a place",
				ArgsUsage: "<place-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					placeID := c.Args().First()
					if placeID == "" {
						return fmt.Errorf("a place ID is required")
					}
					return toggleFavorite(c.String("config"), placeID)
				},
			},
		},
	}
}

func openFavorites(configPath string) (*favorites.SQLite, func(), error) {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return nil, nil, err
	}
	store, err := favorites.NewSQLite(cfg.FavoritesPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening favorite store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warnf("closing favorite store: %v", err)
		}
	}
	return store, cleanup, nil
}

func listFavorites(configPath string) error {
	store, cleanup, err := openFavorites(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ids := make([]string, 0)
	for id := range store.FavoriteIDs() {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		fmt.Println("No favorites yet")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("\n%d favorites\n", len(ids))
	return nil
}

func toggleFavorite(configPath, placeID string) error {
	store, cleanup, err := openFavorites(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := store.Toggle(placeID)
	if err != nil {
		return fmt.Errorf("toggling %s: %w", placeID, err)
	}
	if state {
		fmt.Printf("%s is now a favorite\n", placeID)
	} else {
		fmt.Printf("%s is no longer a favorite\n", placeID)
	}
	return nil
}
