package tasks

import (
	"fmt"
	"strings"
	"time"

	"automsr/internal/browser"
)

var (
	selPunchcardStart    = browser.CSS("section > div > div > div > a")
	selPunchcardCheckers = browser.Class("mee-icon")
	selPunchcardRow      = browser.Class("punchcard-row")
	selPunchcardRowState = browser.CSS("span.mee-icon")
	selPunchcardRowLink  = browser.Tag("a")

	// Sub-item page markers, checked in order. Quiz pages need to be driven;
	// map and search pages count as done on load.
	selMarkerQuiz   = browser.ID("QuizContainerWrapper")
	selMarkerMaps   = browser.ID("maps_sb")
	selMarkerSearch = browser.ID("sb_form_q")
)

// paidKeywords flag punchcards that require spending money. Localized like
// DefaultHeaders; the card text is matched lowercase.
var paidKeywords = []string{
	"compra", "comprare",
	"noleggia", "noleggiare",
	"acquista", "acquistare",
	"spendi", "spendere",
}

const (
	punchcardPasses   = 3
	punchcardItemWait = 1500 * time.Millisecond
)

// Punchcard is a multi-step card whose sub-items each open their own page.
// Paid punchcards are discovered but never executed.
type Punchcard struct {
	f       *Factory
	element browser.Element
	status  Status
	title   string
	paid    bool
}

func (p *Punchcard) Title() string       { return p.title }
func (p *Punchcard) Description() string { return "" }
func (p *Punchcard) Status() Status      { return p.status }
func (p *Punchcard) DailySet() bool      { return false }
func (p *Punchcard) Paid() bool          { return p.paid }

// Punchcards builds every punchcard on the current dashboard, paid ones
// included.
func (f *Factory) Punchcards() ([]*Punchcard, error) {
	elements, err := f.Driver.LocateAll(selPunchcards)
	if err != nil {
		return nil, fmt.Errorf("locate punchcards: %w", err)
	}
	f.Log.Debug("punchcards found", "count", len(elements))

	cards := make([]*Punchcard, 0, len(elements))
	for _, el := range elements {
		card, err := f.punchcard(el)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// FreePunchcards returns the punchcards that can be completed without
// spending.
func (f *Factory) FreePunchcards() ([]Task, error) {
	cards, err := f.Punchcards()
	if err != nil {
		return nil, err
	}
	free := make([]Task, 0, len(cards))
	for _, card := range cards {
		if !card.paid {
			free = append(free, card)
		}
	}
	f.Log.Debug("free punchcards", "count", len(free))
	return free, nil
}

func (f *Factory) punchcard(el browser.Element) (*Punchcard, error) {
	d := f.Driver

	label, err := d.GetAttribute(el, "aria-label")
	if err != nil {
		return nil, fmt.Errorf("read punchcard label: %w", err)
	}

	p := &Punchcard{f: f, element: el, title: label}

	lower := strings.ToLower(label)
	for _, word := range paidKeywords {
		if strings.Contains(lower, word) {
			p.paid = true
			break
		}
	}

	// The checkmark icons track sub-item completion. No icons at all means
	// the card markup is not what we expect.
	icons, err := d.LocateAllIn(el, selPunchcardCheckers)
	if err != nil || len(icons) == 0 {
		f.Log.Warn("no checkmarks found for punchcard, marking invalid", "title", label)
		p.status = StatusInvalid
		return p, nil
	}
	p.status = StatusDone
	for _, icon := range icons {
		class, err := d.GetAttribute(icon, "class")
		if err != nil || !strings.Contains(class, "checkmark") {
			p.status = StatusTodo
			break
		}
	}
	return p, nil
}

// Start opens the punchcard page via its anchor, falling back to the card
// body when the anchor is missing.
func (p *Punchcard) Start() error {
	d := p.f.Driver
	if a, err := d.LocateIn(p.element, selPunchcardStart); err == nil {
		return d.Click(a)
	}
	return d.Click(p.element)
}

// Execute sweeps the punchcard's incomplete sub-items. Each pass walks the
// items that are still missing; sub-items that cannot be recognized are
// retried on the next pass and only logged when they survive every pass.
func (p *Punchcard) Execute() error {
	d := p.f.Driver

	rootURL, err := d.CurrentURL()
	if err != nil {
		return fmt.Errorf("read punchcard page url: %w", err)
	}

	todo, err := p.missingItemURLs()
	if err != nil {
		return err
	}
	p.f.Log.Debug("todo punchcard items", "count", len(todo), "title", p.title)
	if len(todo) == 0 {
		return nil
	}

	for pass := 0; pass < punchcardPasses && len(todo) > 0; pass++ {
		p.f.Log.Info("punchcard pass", "pass", pass+1, "remaining", len(todo))

		var missing []string
		for i, url := range todo {
			p.f.Log.Info("punchcard item", "item", i+1, "of", len(todo))
			if err := d.Navigate(url); err != nil {
				missing = append(missing, url)
				continue
			}
			p.f.Sleep(punchcardItemWait)

			if !p.completeItem() {
				p.f.Log.Error("cannot complete punchcard item", "url", url)
				missing = append(missing, url)
			}

			if err := d.Navigate(rootURL); err != nil {
				return fmt.Errorf("return to punchcard page: %w", err)
			}
		}
		todo = missing
	}

	if len(todo) > 0 {
		p.f.Log.Error("punchcard items left incomplete", "count", len(todo), "title", p.title)
	}
	return nil
}

// missingItemURLs collects the link of every sub-item row not yet marked
// complete.
func (p *Punchcard) missingItemURLs() ([]string, error) {
	d := p.f.Driver

	rows, err := d.LocateAll(selPunchcardRow)
	if err != nil {
		return nil, fmt.Errorf("locate punchcard rows: %w", err)
	}
	p.f.Log.Debug("punchcard rows", "count", len(rows), "title", p.title)

	var urls []string
	for _, row := range rows {
		if state, err := d.LocateIn(row, selPunchcardRowState); err == nil {
			if class, err := d.GetAttribute(state, "class"); err == nil &&
				strings.Contains(class, "punchcard-complete") {
				continue
			}
		}
		link, err := d.LocateIn(row, selPunchcardRowLink)
		if err != nil {
			return nil, fmt.Errorf("locate punchcard row link: %w", err)
		}
		href, err := d.GetAttribute(link, "href")
		if err != nil {
			return nil, fmt.Errorf("read punchcard row link: %w", err)
		}
		urls = append(urls, href)
	}
	return urls, nil
}

// completeItem recognizes the opened sub-item page and drives it as needed.
func (p *Punchcard) completeItem() bool {
	d := p.f.Driver

	if _, err := d.Locate(selMarkerQuiz); err == nil {
		p.f.Log.Info("quiz punchcard item found")
		if err := p.f.innerQuiz().Execute(); err != nil {
			p.f.Log.Error("inner quiz failed", "err", err)
			return false
		}
		return true
	}
	if _, err := d.Locate(selMarkerMaps); err == nil {
		return true
	}
	if _, err := d.Locate(selMarkerSearch); err == nil {
		return true
	}
	return false
}
