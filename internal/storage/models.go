package storage

import "time"

// DayFormat is how calendar days are keyed in the store.
const DayFormat = "2006-01-02"

// Day returns the store day key for t, in t's location.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// PointsSnapshot is one observation of an account's balance. The points table
// is a pure log: no uniqueness, no updates.
type PointsSnapshot struct {
	Email     string
	Points    int
	Timestamp time.Time
}

// CompletionRecord is the persisted status of one task observation. At most
// one live record exists per (day, hash).
type CompletionRecord struct {
	Day         string
	Hash        string
	Email       string
	Daily       bool
	Status      string
	Timestamp   time.Time
	Title       string
	Description string
}
