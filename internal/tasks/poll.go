package tasks

import (
	"fmt"
	"time"

	"automsr/internal/browser"
)

var selPollOption = browser.ID("btoption0")

const (
	pollAttempts = 3
	pollBackoff  = 3 * time.Second
)

// PollActivity answers a single-question poll. The option element renders
// late on slow pages, so locating it is retried across page refreshes.
type PollActivity struct {
	activity
}

func (p *PollActivity) Execute() error {
	d := p.f.Driver

	var lastErr error
	for attempt := 0; attempt < pollAttempts; attempt++ {
		if attempt > 0 {
			if err := d.Refresh(); err != nil {
				p.f.Log.Debug("poll page refresh failed", "err", err)
			}
		}
		p.f.Sleep(pollBackoff)

		el, err := d.Locate(selPollOption)
		if err == nil {
			err = d.Click(el)
		}
		if err == nil {
			return nil
		}
		lastErr = err
		p.f.Log.Warn("poll answer attempt failed", "attempt", attempt+1, "err", err)
	}

	return fmt.Errorf("answer poll after %d attempts: %w", pollAttempts, lastErr)
}
