package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartmark/internal/app"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bookmarks from a YAML file for one owner",
	Long: `Import bookmarks from a YAML file for one owner.

The file is either a flat list of {url, title} entries or a Homepage
bookmarks.yaml. URLs the owner already saved are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		file, _ := cmd.Flags().GetString("file")

		cfg := config.Load()
		log := newLogger(cfg)
		defer func() { _ = log.Sync() }()

		res, err := app.Import(cmd.Context(), cfg, log, owner, file)
		if err != nil {
			return err
		}
		log.Info("import finished",
			logger.String("owner", owner),
			logger.Int("imported", res.Imported),
			logger.Int("skipped", res.Skipped))
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d bookmarks, skipped %d\n", res.Imported, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().String("owner", "", "owner id the bookmarks belong to")
	importCmd.Flags().String("file", "", "path to the YAML file")
	_ = importCmd.MarkFlagRequired("owner")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
