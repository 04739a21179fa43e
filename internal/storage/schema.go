package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// Pure append-only log of observed point balances.
		`CREATE TABLE IF NOT EXISTS points (
			email TEXT NOT NULL,
			points INTEGER NOT NULL,
			timestamp DATETIME NOT NULL
		);`,
		// One live row per (day, hash); re-observation updates status only.
		`CREATE TABLE IF NOT EXISTS completions (
			day TEXT NOT NULL,
			hash TEXT NOT NULL,
			email TEXT NOT NULL,
			daily INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			title TEXT,
			description TEXT,
			UNIQUE(day, hash)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_points_email_timestamp ON points(email, timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_day_email ON completions(day, email);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
