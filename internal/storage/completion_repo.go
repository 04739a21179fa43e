package storage

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// HashKey derives the stable dedup key for a task observation. Email is part
// of the digest so profiles sharing one store never collide on a same-day key.
func HashKey(email, title, description string) string {
	h := md5.New()
	for _, part := range []string{email, title, description} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type CompletionRepo struct {
	db *sql.DB
}

func NewCompletionRepo(db *sql.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// Upsert records one task observation. A new (day, hash) inserts the full
// record; a repeat observation updates status only, so re-running the same
// day is idempotent.
func (r *CompletionRepo) Upsert(ctx context.Context, rec CompletionRecord) error {
	return r.upsert(ctx, r.db, rec)
}

// UpsertAll records a batch of observations in one transaction.
func (r *CompletionRepo) UpsertAll(ctx context.Context, recs []CompletionRecord) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if err := r.upsert(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *CompletionRepo) upsert(ctx context.Context, db execer, rec CompletionRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO completions (day, hash, email, daily, status, timestamp, title, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day, hash) DO UPDATE SET status = excluded.status
	`, rec.Day, rec.Hash, rec.Email, boolToInt(rec.Daily), rec.Status, rec.Timestamp, rec.Title, rec.Description)
	if err != nil {
		return fmt.Errorf("completion upsert: %w", err)
	}
	return nil
}

// ListForDay returns every record for (email, day) in insertion order.
func (r *CompletionRepo) ListForDay(ctx context.Context, email string, day time.Time) ([]CompletionRecord, error) {
	return r.listForDay(ctx, email, day, "")
}

// TodoForDay returns the records still marked TODO for (email, day).
func (r *CompletionRepo) TodoForDay(ctx context.Context, email string, day time.Time) ([]CompletionRecord, error) {
	return r.listForDay(ctx, email, day, "TODO")
}

func (r *CompletionRepo) listForDay(ctx context.Context, email string, day time.Time, status string) ([]CompletionRecord, error) {
	query := `
		SELECT day, hash, email, daily, status, timestamp, title, description
		FROM completions
		WHERE day = ? AND email = ?
	`
	args := []any{Day(day), email}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []CompletionRecord
	for rows.Next() {
		var (
			rec   CompletionRecord
			daily int
			title sql.NullString
			desc  sql.NullString
		)
		if err := rows.Scan(&rec.Day, &rec.Hash, &rec.Email, &daily, &rec.Status, &rec.Timestamp, &title, &desc); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		rec.Daily = daily != 0
		rec.Title = title.String
		rec.Description = desc.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
