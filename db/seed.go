package db

import (
	"context"
	"fmt"

	"menu-admin-go/logger"
	"menu-admin-go/models"
)

// SeedMenuItems are added to an empty store on startup.
var SeedMenuItems = []models.MenuItemFields{
	{Name: "Spaghetti", Station: "Pasta Station", DiningCommonsCode: "ortega"},
	{Name: "Tacos", Station: "Mexican Station", DiningCommonsCode: "portola"},
	{Name: "Sushi", Station: "Sushi Bar", DiningCommonsCode: "carrillo"},
}

// SeedIfEmpty adds SeedMenuItems when the store has no items.
// It returns the number of items added.
func SeedIfEmpty(ctx context.Context, store MenuItemStore) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to check for existing menu items: %w", err)
	}
	if count > 0 {
		logger.GetLogger().Infow("existing menu items found, skipping seed data", "count", count)
		return 0, nil
	}

	logger.GetLogger().Infow("no menu items found, adding seed data")
	added := 0
	for _, fields := range SeedMenuItems {
		if _, err := store.CreateMenuItem(ctx, fields); err != nil {
			// print the error but keep going
			logger.GetLogger().Errorw("error adding seed menu item", "name", fields.Name, "error", err)
			continue
		}
		added++
	}
	return added, nil
}
