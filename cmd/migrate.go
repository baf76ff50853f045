package cmd

import (
	"github.com/spf13/cobra"

	"menu-admin-go/config"
	"menu-admin-go/db"
	"menu-admin-go/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := db.NewPostgresStore(cmd.Context(), cfg.DB.URL())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ApplyMigrations(cmd.Context()); err != nil {
			return err
		}
		logger.GetLogger().Infow("migrations applied", "host", cfg.DB.Host, "database", cfg.DB.Database)
		return nil
	},
}
