// Package tasks models the completable units of rewards work: dashboard
// activity cards (standard, quiz, poll, this-or-that) and punchcards. Tasks
// are constructed fresh from every dashboard fetch and never survive it; the
// next fetch supersedes them.
package tasks

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"automsr/internal/browser"
)

// Kind selects which family of tasks an orchestrator pass works on.
type Kind string

const (
	KindActivity  Kind = "activity"
	KindPunchcard Kind = "punchcard"
)

// Singular and Plural are used in user-facing messages.
func (k Kind) Singular() string { return string(k) }

func (k Kind) Plural() string {
	switch k {
	case KindActivity:
		return "activities"
	default:
		return string(k) + "s"
	}
}

// Task is one completable unit of work located on the current page load.
type Task interface {
	Title() string
	Description() string
	Status() Status
	DailySet() bool

	// Start activates the task from the dashboard, typically opening its
	// page in a new window.
	Start() error

	// Execute drives the opened task page to completion. It runs to its own
	// natural end or internal retry exhaustion; the orchestrator never
	// interrupts it.
	Execute() error
}

// Dashboard card selectors.
var (
	selDailyCards = browser.CSS("#daily-sets > mee-card-group > div > mee-card > div > card-content > mee-rewards-daily-set-item-content > div")
	selOtherCards = browser.CSS("#more-activities > div > mee-card.ng-scope.ng-isolate-scope.c-card > div > card-content > mee-rewards-more-activities-card-item > div")
	selPunchcards = browser.CSS("#punch-cards > mee-carousel > div > div:nth-child(4) > ul > li > a > mee-hero-item")

	selCardStatus = browser.CSS("mee-rewards-points > div > div > span.mee-icon")
	selCardHeader = browser.CSS("div.contentContainer > h3")
	selCardText   = browser.CSS("div.contentContainer > p")
)

// Base headers used to classify card types. The target site is localized;
// override these when running against another market.
type Headers struct {
	Quiz       string
	Poll       string
	ThisOrThat string
}

func DefaultHeaders() Headers {
	return Headers{
		Quiz:       "quiz",
		Poll:       "sondaggio",
		ThisOrThat: "questo o quello",
	}
}

// Factory discovers and builds tasks against one driver session. The zero
// value is not usable; fill Driver and call Normalize (or use NewFactory).
type Factory struct {
	Driver    browser.Driver
	LedgerDir string
	Headers   Headers
	Log       *slog.Logger

	// Sleep, Now and Rand are injectable for tests.
	Sleep func(time.Duration)
	Now   func() time.Time
	Rand  func(n int) int
}

func NewFactory(driver browser.Driver, ledgerDir string) *Factory {
	f := &Factory{Driver: driver, LedgerDir: ledgerDir}
	f.Normalize()
	return f
}

// Normalize fills unset optional fields with defaults.
func (f *Factory) Normalize() {
	if f.Headers == (Headers{}) {
		f.Headers = DefaultHeaders()
	}
	if f.Log == nil {
		f.Log = slog.Default()
	}
	if f.Sleep == nil {
		f.Sleep = time.Sleep
	}
	if f.Now == nil {
		f.Now = time.Now
	}
	if f.Rand == nil {
		f.Rand = rand.Intn
	}
}

// Tasks discovers every executable task of a kind on the current page. Paid
// punchcards are excluded; they cannot be completed without spending.
func (f *Factory) Tasks(kind Kind) ([]Task, error) {
	switch kind {
	case KindActivity:
		return f.Activities()
	case KindPunchcard:
		return f.FreePunchcards()
	default:
		return nil, fmt.Errorf("unknown task kind %q", kind)
	}
}
