package root

import (
	"context"
	"database/sql"

	"automsr/internal/config"
	"automsr/internal/storage"
)

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}
