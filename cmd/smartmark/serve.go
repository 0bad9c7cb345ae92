package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartmark/internal/app"
	"github.com/MrSnakeDoc/smartmark/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		log := newLogger(cfg)
		defer func() { _ = log.Sync() }()

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return a.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
