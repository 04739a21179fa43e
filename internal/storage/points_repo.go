package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PointsRepo struct {
	db *sql.DB
}

func NewPointsRepo(db *sql.DB) *PointsRepo {
	return &PointsRepo{db: db}
}

// Insert appends one snapshot to the points log.
func (r *PointsRepo) Insert(ctx context.Context, s PointsSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO points (email, points, timestamp) VALUES (?, ?, ?)
	`, s.Email, s.Points, s.Timestamp)
	if err != nil {
		return fmt.Errorf("points insert: %w", err)
	}
	return nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *PointsRepo) snapshotForDay(ctx context.Context, email string, day time.Time, order string) (*PointsSnapshot, error) {
	start, end := dayBounds(day)
	row := r.db.QueryRowContext(ctx, `
		SELECT email, points, timestamp
		FROM points
		WHERE email = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp `+order+`
		LIMIT 1
	`, email, start, end)

	var s PointsSnapshot
	if err := row.Scan(&s.Email, &s.Points, &s.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("points snapshot for day: %w", err)
	}
	return &s, nil
}

// FirstForDay returns the earliest snapshot for (email, day), or nil.
func (r *PointsRepo) FirstForDay(ctx context.Context, email string, day time.Time) (*PointsSnapshot, error) {
	return r.snapshotForDay(ctx, email, day, "ASC")
}

// LastForDay returns the latest snapshot for (email, day), or nil.
func (r *PointsRepo) LastForDay(ctx context.Context, email string, day time.Time) (*PointsSnapshot, error) {
	return r.snapshotForDay(ctx, email, day, "DESC")
}

// DeltaForDay returns end.points - start.points for (email, day). Zero when
// fewer than two snapshots exist.
func (r *PointsRepo) DeltaForDay(ctx context.Context, email string, day time.Time) (int, error) {
	first, err := r.FirstForDay(ctx, email, day)
	if err != nil {
		return 0, err
	}
	last, err := r.LastForDay(ctx, email, day)
	if err != nil {
		return 0, err
	}
	if first == nil || last == nil || first.Timestamp.Equal(last.Timestamp) {
		return 0, nil
	}
	return last.Points - first.Points, nil
}

// MaxForDay returns the highest balance observed for (email, day).
func (r *PointsRepo) MaxForDay(ctx context.Context, email string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(points), 0)
		FROM points
		WHERE email = ? AND timestamp >= ? AND timestamp < ?
	`, email, start, end)

	var max int
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("points max for day: %w", err)
	}
	return max, nil
}
