package tasks

import (
	"errors"
	"fmt"
	"strings"

	"automsr/internal/browser"
)

// activity is the shared base for all dashboard card tasks. The element
// handle is only valid for the page load it was located on.
type activity struct {
	f       *Factory
	element browser.Element
	status  Status
	title   string
	text    string
	daily   bool
}

func (a *activity) Title() string       { return a.title }
func (a *activity) Description() string { return a.text }
func (a *activity) Status() Status      { return a.status }
func (a *activity) DailySet() bool      { return a.daily }

// Start clicks the card, which opens the activity page in a new window.
func (a *activity) Start() error {
	return a.f.Driver.Click(a.element)
}

// newActivity reads status, title and text off a freshly located card.
func (f *Factory) newActivity(el browser.Element, daily bool) (activity, error) {
	a := activity{f: f, element: el, daily: daily}

	marker, err := f.Driver.LocateIn(el, selCardStatus)
	switch {
	case err == nil:
		class, err := f.Driver.GetAttribute(marker, "class")
		if err != nil {
			return activity{}, fmt.Errorf("read status marker: %w", err)
		}
		a.status = ClassifyStatus(class)
	case errors.Is(err, browser.ErrNotFound):
		a.status = StatusInvalid
	default:
		return activity{}, fmt.Errorf("locate status marker: %w", err)
	}

	header, err := f.Driver.LocateIn(el, selCardHeader)
	if err != nil {
		return activity{}, fmt.Errorf("locate card header: %w", err)
	}
	if a.title, err = f.Driver.GetText(header); err != nil {
		return activity{}, fmt.Errorf("read card header: %w", err)
	}

	text, err := f.Driver.LocateIn(el, selCardText)
	if err != nil {
		return activity{}, fmt.Errorf("locate card text: %w", err)
	}
	if a.text, err = f.Driver.GetText(text); err != nil {
		return activity{}, fmt.Errorf("read card text: %w", err)
	}

	return a, nil
}

// Activity classifies one freshly located card by its header text and builds
// the correctly typed task.
func (f *Factory) Activity(el browser.Element, daily bool) (Task, error) {
	base, err := f.newActivity(el, daily)
	if err != nil {
		return nil, err
	}

	header := strings.ToLower(strings.TrimSpace(base.title))
	switch {
	case strings.Contains(header, strings.ToLower(f.Headers.ThisOrThat)):
		return &ThisOrThatActivity{activity: base}, nil
	case strings.Contains(header, strings.ToLower(f.Headers.Poll)):
		return &PollActivity{activity: base}, nil
	case strings.Contains(header, strings.ToLower(f.Headers.Quiz)):
		return &QuizActivity{activity: base}, nil
	default:
		return &StandardActivity{activity: base}, nil
	}
}

// dailySetSize is the number of cards in one day's set. The dashboard shows
// today's three and tomorrow's three.
const dailySetSize = 3

// ErrNoDailyActivities reports a dashboard that exposed no daily cards at
// all, which means the page did not load as expected.
var ErrNoDailyActivities = errors.New("no daily activity found")

// DailyActivities returns today's daily-set tasks. The dashboard renders six
// cards (today's set plus tomorrow's preview); only the first three are
// actionable.
func (f *Factory) DailyActivities() ([]Task, error) {
	els, err := f.Driver.LocateAll(selDailyCards)
	if err != nil {
		return nil, fmt.Errorf("locate daily cards: %w", err)
	}
	if len(els) == 0 {
		return nil, ErrNoDailyActivities
	}
	if len(els) != 2*dailySetSize {
		return nil, fmt.Errorf("found %d daily cards, want %d (today's set plus tomorrow's)", len(els), 2*dailySetSize)
	}

	out := make([]Task, 0, dailySetSize)
	for _, el := range els[:dailySetSize] {
		task, err := f.Activity(el, true)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

// OtherActivities returns the recurring non-daily tasks.
func (f *Factory) OtherActivities() ([]Task, error) {
	els, err := f.Driver.LocateAll(selOtherCards)
	if err != nil {
		return nil, fmt.Errorf("locate other cards: %w", err)
	}

	var out []Task
	for _, el := range els {
		task, err := f.Activity(el, false)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

// Activities returns every activity on the dashboard, daily set first.
func (f *Factory) Activities() ([]Task, error) {
	daily, err := f.DailyActivities()
	if err != nil {
		return nil, err
	}
	other, err := f.OtherActivities()
	if err != nil {
		return nil, err
	}
	return append(daily, other...), nil
}

// StandardActivity is completed server-side by activation alone.
type StandardActivity struct {
	activity
}

func (a *StandardActivity) Execute() error { return nil }
