package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"automsr/internal/browser"
	"automsr/internal/dashboard"
	"automsr/internal/storage"
	"automsr/internal/tasks"
)

// selTwoFactorProofs is the proof chooser the login flow shows when an
// account demands interactive 2FA.
var selTwoFactorProofs = browser.ID("idDiv_SAOTCS_Proofs")

const loginHost = "login.live.com"

// dashboardRetries bounds the refresh attempts made when the embedded
// dashboard object cannot be parsed off the page.
const dashboardRetries = 3

// RunProfile drives every step of one profile run in order and reports how
// each went. A start-session failure (the 2FA case included) aborts the
// remaining steps; any other step failure only marks that step.
func (r *Runner) RunProfile(ctx context.Context) []StepResult {
	var out []StepResult

	run := func(step Step, skipped bool, fn func() error) bool {
		if skipped {
			out = append(out, StepResult{Step: step, Outcome: OutcomeSkipped})
			r.Log.Warn("step skipped", "step", step)
			return true
		}
		start := time.Now()
		err := fn()
		res := StepResult{Step: step, Duration: time.Since(start)}
		if err != nil {
			res.Outcome = OutcomeFailure
			res.Explanation = err.Error()
			r.Log.Error("step failed", "step", step, "err", err)
		} else {
			res.Outcome = OutcomeSuccess
			r.Log.Info("step completed", "step", step, "duration", res.Duration)
		}
		out = append(out, res)
		return err == nil
	}

	if ok := run(StepStartSession, false, func() error { return r.startSession() }); !ok {
		return out
	}

	run(StepGetDashboard, false, func() error { return r.getDashboard(ctx) })
	run(StepPunchcards, r.SkipPunchcards, func() error {
		return r.RunToCompletion(ctx, tasks.KindPunchcard, r.Retries)
	})
	run(StepPromotions, r.SkipActivities, func() error {
		return r.RunToCompletion(ctx, tasks.KindActivity, r.Retries)
	})
	run(StepPCSearches, r.SkipSearches, func() error { return r.runSearches(false) })
	run(StepMobileSearches, r.SkipSearches, func() error { return r.runSearches(true) })
	run(StepEndSession, false, func() error { return r.endSession(ctx) })

	return out
}

// startSession opens the rewards home and verifies the session is usable.
func (r *Runner) startSession() error {
	if err := r.goHome(); err != nil {
		return err
	}
	if err := r.check2FA(); err != nil {
		return err
	}
	return nil
}

// check2FA detects the interactive proof challenge. There is nothing
// automated to do about it, the profile must be approved by hand once.
func (r *Runner) check2FA() error {
	url, err := r.Driver.CurrentURL()
	if err != nil {
		return err
	}
	if !strings.Contains(url, loginHost) {
		return nil
	}
	if _, err := r.Driver.Locate(selTwoFactorProofs); err == nil {
		return Err2FADetected
	}
	return fmt.Errorf("stuck on login page %s", url)
}

// getDashboard parses the dashboard object off the home page and records
// the session-start points snapshot.
func (r *Runner) getDashboard(ctx context.Context) error {
	var lastErr error
	for i := 0; i < dashboardRetries; i++ {
		if i > 0 {
			if err := r.Driver.Refresh(); err != nil {
				r.Log.Debug("dashboard refresh failed", "err", err)
			}
			r.Sleep(2 * time.Second)
		}
		source, err := r.Driver.PageSource()
		if err != nil {
			lastErr = err
			continue
		}
		dash, err := dashboard.ExtractDashboard(source)
		if err != nil {
			lastErr = err
			continue
		}
		r.dash = dash
		// The promotion objects cross-check the DOM-side discovery: what the
		// payload says is still completable is what the task passes should
		// find on the page.
		r.Log.Info("dashboard fetched",
			"points", dash.Points(),
			"level", dash.Level(),
			"promotions_todo", len(dash.Completable(r.Now())))
		return r.snapshotPoints(ctx, dash.Points())
	}
	return fmt.Errorf("fetch dashboard: %w", lastErr)
}

func (r *Runner) snapshotPoints(ctx context.Context, points int) error {
	err := r.Points.Insert(ctx, storage.PointsSnapshot{
		Email:     r.Email,
		Points:    points,
		Timestamp: r.Now(),
	})
	if err != nil {
		return fmt.Errorf("store points snapshot: %w", err)
	}
	return nil
}

// endSession records the closing points snapshot, read fresh off the page
// so the day's earnings show up in the delta.
func (r *Runner) endSession(ctx context.Context) error {
	if err := r.goHome(); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < dashboardRetries; i++ {
		if i > 0 {
			if err := r.Driver.Refresh(); err != nil {
				r.Log.Debug("points refresh failed", "err", err)
			}
			r.Sleep(time.Second)
		}
		source, err := r.Driver.PageSource()
		if err != nil {
			lastErr = err
			continue
		}
		points, err := dashboard.ExtractPoints(source)
		if err != nil {
			lastErr = err
			continue
		}
		r.Log.Info("session points", "points", points)
		return r.snapshotPoints(ctx, points)
	}
	return fmt.Errorf("read final points: %w", lastErr)
}
