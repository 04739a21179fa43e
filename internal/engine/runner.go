// Package engine drives one profile through its daily rewards work: task
// completion with a bounded retry loop, search quotas, and the step pipeline
// that a profile run is reported by.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"automsr/internal/browser"
	"automsr/internal/dashboard"
	"automsr/internal/search"
	"automsr/internal/storage"
	"automsr/internal/tasks"
)

// Default page roots. Overridable for tests.
const (
	DefaultHomeURL = "https://rewards.bing.com/"
	DefaultBingURL = "https://www.bing.com/"
)

// Runner owns one driver session and one profile's run state. It is not
// safe for concurrent use; run profiles sequentially.
type Runner struct {
	Driver      browser.Driver
	Factory     *tasks.Factory
	Points      *storage.PointsRepo
	Completions *storage.CompletionRepo
	Gen         search.Generator
	Log         *slog.Logger

	Email   string
	Retries int
	Reverse bool

	SkipActivities bool
	SkipPunchcards bool
	SkipSearches   bool

	HomeURL string
	BingURL string

	// Sleep and Now are injectable for tests.
	Sleep func(time.Duration)
	Now   func() time.Time

	// dash is the snapshot taken by the GET_DASHBOARD step; the search
	// steps read their quotas from it.
	dash *dashboard.Dashboard
}

// NewRunner wires a runner over an open driver session and state store.
func NewRunner(driver browser.Driver, db *sql.DB, email string) *Runner {
	r := &Runner{
		Driver:      driver,
		Points:      storage.NewPointsRepo(db),
		Completions: storage.NewCompletionRepo(db),
		Email:       email,
	}
	r.Normalize()
	return r
}

// Normalize fills unset optional fields with defaults.
func (r *Runner) Normalize() {
	if r.Factory == nil {
		r.Factory = tasks.NewFactory(r.Driver, "")
	}
	if r.Gen == nil {
		r.Gen, _ = search.New(search.KindRandom)
	}
	if r.Log == nil {
		r.Log = slog.Default()
	}
	if r.Retries < 1 {
		r.Retries = 3
	}
	if r.HomeURL == "" {
		r.HomeURL = DefaultHomeURL
	}
	if r.BingURL == "" {
		r.BingURL = DefaultBingURL
	}
	if r.Sleep == nil {
		r.Sleep = time.Sleep
	}
	if r.Now == nil {
		r.Now = time.Now
	}
}

func (r *Runner) goHome() error {
	if err := r.Driver.Navigate(r.HomeURL); err != nil {
		return fmt.Errorf("go to rewards home: %w", err)
	}
	r.Sleep(time.Second)
	return nil
}

// RunToCompletion repeatedly fetches the tasks of one kind, persists their
// states, and attempts every TODO one, until none is left or the budget
// runs out. Element handles die on navigation, so every pass re-fetches.
func (r *Runner) RunToCompletion(ctx context.Context, kind tasks.Kind, budget int) error {
	if budget < 1 {
		budget = 1
	}

	for attempt := 0; ; attempt++ {
		if err := r.goHome(); err != nil {
			return err
		}

		list, err := r.Factory.Tasks(kind)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", kind.Plural(), err)
		}
		if err := r.storeStates(ctx, list); err != nil {
			return err
		}

		var todo []tasks.Task
		for _, t := range list {
			if t.Status() == tasks.StatusTodo {
				todo = append(todo, t)
			}
		}
		if len(todo) == 0 {
			r.Log.Info("no todo "+kind.Plural()+" left", "attempt", attempt)
			return nil
		}
		if attempt >= budget {
			return &IncompleteError{Kind: kind, Count: len(todo)}
		}

		if r.Reverse {
			for i, j := 0, len(todo)-1; i < j; i, j = i+1, j-1 {
				todo[i], todo[j] = todo[j], todo[i]
			}
		}

		for _, t := range todo {
			if err := r.attempt(ctx, t); err != nil {
				// The next pass re-fetches and retries; one bad task must
				// not sink its siblings.
				r.Log.Error(kind.Singular()+" failed", "title", t.Title(), "err", err)
			}
		}
	}
}

// attempt starts one task, follows it into its window, drives it to its own
// end, and switches back to the dashboard window. It must not reload the
// dashboard: sibling tasks in the same pass still hold element handles from
// the current page load, and a reload would stale them all.
func (r *Runner) attempt(ctx context.Context, t tasks.Task) error {
	r.Log.Info("starting task", "title", t.Title(), "daily", t.DailySet())

	home, err := r.Driver.CurrentWindow()
	if err != nil {
		return err
	}
	before, err := r.Driver.WindowHandles()
	if err != nil {
		return err
	}

	if err := t.Start(); err != nil {
		return fmt.Errorf("start task: %w", err)
	}
	r.Sleep(2 * time.Second)

	if err := r.switchToNewWindow(before); err != nil {
		return err
	}

	execErr := t.Execute()

	// Back to the dashboard window no matter how the task went.
	if err := r.Driver.SwitchWindow(home); err != nil {
		return err
	}

	if execErr != nil {
		return fmt.Errorf("execute task: %w", execErr)
	}
	r.Log.Info("task completed", "title", t.Title())
	return r.Completions.Upsert(ctx, r.record(t, tasks.StatusDone))
}

// switchToNewWindow moves to the window a task click opened, if any.
func (r *Runner) switchToNewWindow(before []string) error {
	after, err := r.Driver.WindowHandles()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(before))
	for _, h := range before {
		known[h] = true
	}
	for _, h := range after {
		if !known[h] {
			return r.Driver.SwitchWindow(h)
		}
	}
	return nil
}

func (r *Runner) storeStates(ctx context.Context, list []tasks.Task) error {
	recs := make([]storage.CompletionRecord, 0, len(list))
	for _, t := range list {
		recs = append(recs, r.record(t, t.Status()))
	}
	if err := r.Completions.UpsertAll(ctx, recs); err != nil {
		return fmt.Errorf("store task states: %w", err)
	}
	return nil
}

func (r *Runner) record(t tasks.Task, status tasks.Status) storage.CompletionRecord {
	now := r.Now()
	return storage.CompletionRecord{
		Day:         storage.Day(now),
		Hash:        storage.HashKey(r.Email, t.Title(), t.Description()),
		Email:       r.Email,
		Daily:       t.DailySet(),
		Status:      string(status),
		Timestamp:   now,
		Title:       t.Title(),
		Description: t.Description(),
	}
}
