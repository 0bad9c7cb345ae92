package app

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/importer"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/store/postgres"
)

// Migrate applies pending schema migrations. It only needs the database.
func Migrate(ctx context.Context, databaseURL string, log logger.Logger) error {
	if databaseURL == "" {
		return errors.New("SMARTMARK_DATABASE_URL is required to migrate")
	}
	db, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := applyMigrations(ctx, db, log); err != nil {
		return err
	}
	log.Info("✅ database schema is up to date")
	return nil
}

// Import loads a bookmarks file for owner. Open dashboards of that owner
// receive the new rows live.
func Import(ctx context.Context, cfg *config.Config, log logger.Logger, owner, path string) (importer.Result, error) {
	if cfg.DatabaseURL == "" {
		return importer.Result{}, errors.New("SMARTMARK_DATABASE_URL is required to import")
	}
	entries, err := importer.Load(path)
	if err != nil {
		return importer.Result{}, err
	}

	res, err := Open(ctx, cfg, log)
	if err != nil {
		return importer.Result{}, err
	}
	defer res.Close()

	if res.DB != nil {
		if err := applyMigrations(ctx, res.DB, log); err != nil {
			return importer.Result{}, err
		}
	}
	return importer.Import(ctx, res.Store, owner, entries, log)
}
