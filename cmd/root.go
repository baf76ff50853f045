package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"menu-admin-go/logger"
)

var rootCmd = &cobra.Command{
	Use:   "menu-admin",
	Short: "Admin frontend and REST API for UCSB dining commons menu items",
	// serve is the default so the bare binary behaves like a server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		logger.GetLogger().Errorw("command failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}
