package engine

import (
	"errors"
	"fmt"
	"time"

	"automsr/internal/browser"
)

var selSearchBox = browser.CSS("#sb_form_q")

const (
	// searchMargin pads the quota; the counters on the dashboard snapshot
	// can lag behind the searches already made today.
	searchMargin = 5

	// searchBoxRetries bounds the refresh attempts for the input field.
	searchBoxRetries = 5
)

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/90.0.4430.93 Safari/537.36 Edg/90.0.818.49"
	mobileUserAgent = "Mozilla/5.0 (Linux; Android 9; SM-G960F Build/PPR1.180610.011; wv) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/74.0.3729.157"
)

// runSearches performs the desktop or mobile search round, sized from the
// dashboard snapshot's counters.
func (r *Runner) runSearches(mobile bool) error {
	if r.dash == nil {
		return errors.New("no dashboard snapshot, cannot size searches")
	}

	label := "desktop"
	quota := r.dash.PCSearchQuota()
	ua := desktopUserAgent
	if mobile {
		label = "mobile"
		quota = r.dash.MobileSearchQuota()
		ua = mobileUserAgent
	}
	if quota == 0 {
		r.Log.Info("no " + label + " searches needed")
		return nil
	}
	limit := quota + searchMargin
	r.Log.Info(label+" searches", "count", limit)

	if err := r.setUserAgent(ua); err != nil {
		return err
	}
	if mobile {
		// Leave the session on the desktop agent for whatever runs next.
		defer func() {
			if err := r.setUserAgent(desktopUserAgent); err != nil {
				r.Log.Warn("cannot restore desktop user agent", "err", err)
			}
		}()
	}

	if err := r.Driver.Navigate(r.BingURL); err != nil {
		return fmt.Errorf("go to search page: %w", err)
	}
	r.Sleep(time.Second)

	for i := 0; i < limit; i++ {
		// The page reloads on every submit, so the box is re-located each
		// round.
		box, err := r.locateSearchBox()
		if err != nil {
			return err
		}
		keys, pause := r.Gen.Next()
		if err := r.Driver.SendKeys(box, keys); err != nil {
			return fmt.Errorf("type search %d: %w", i+1, err)
		}
		if err := r.Driver.SendKeys(box, browser.KeyEnter); err != nil {
			return fmt.Errorf("submit search %d: %w", i+1, err)
		}
		r.Log.Debug("search submitted", "n", i+1, "of", limit)
		r.Sleep(pause)
	}
	return nil
}

func (r *Runner) setUserAgent(ua string) error {
	sw, ok := r.Driver.(browser.UserAgentSwitcher)
	if !ok {
		return errors.New("driver cannot switch user agent")
	}
	if err := sw.SetUserAgent(ua); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	return nil
}

func (r *Runner) locateSearchBox() (browser.Element, error) {
	var lastErr error
	for i := 0; i < searchBoxRetries; i++ {
		el, err := r.Driver.Locate(selSearchBox)
		if err == nil {
			return el, nil
		}
		lastErr = err
		r.Sleep(time.Second)
		if err := r.Driver.Refresh(); err != nil {
			r.Log.Debug("search page refresh failed", "err", err)
		}
	}
	return nil, fmt.Errorf("locate search box: %w", lastErr)
}
