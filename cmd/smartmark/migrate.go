package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartmark/internal/app"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dsn, _ := cmd.Flags().GetString("database-url")
		if dsn == "" {
			dsn = config.DatabaseURL()
		}
		level, _ := cmd.Flags().GetString("log-level")
		log := logger.New(level, true)
		defer func() { _ = log.Sync() }()

		return app.Migrate(cmd.Context(), dsn, log)
	},
}

func init() {
	migrateCmd.Flags().String("database-url", "", "postgres DSN (default $SMARTMARK_DATABASE_URL)")
	migrateCmd.Flags().String("log-level", "info", "debug | info | warn | error")
	rootCmd.AddCommand(migrateCmd)
}
