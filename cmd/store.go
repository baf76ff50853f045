package cmd

import (
	"context"
	"fmt"

	"menu-admin-go/config"
	"menu-admin-go/db"
	"menu-admin-go/logger"
)

// openStore connects to the configured storage backend.
func openStore(ctx context.Context, cfg *config.Config) (db.MenuItemStore, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return db.NewRedisService(client), nil
	case config.StorePostgres:
		store, err := db.NewPostgresStore(ctx, cfg.DB.URL())
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := store.ApplyMigrations(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	case config.StoreMemory:
		logger.GetLogger().Warnw("using in-memory store, data is lost on restart")
		return db.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
