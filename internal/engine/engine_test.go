package engine

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"automsr/internal/browser"
	"automsr/internal/storage"
	"automsr/internal/tasks"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "automsr.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRunner(t *testing.T, d browser.Driver) *Runner {
	t.Helper()
	r := NewRunner(d, newTestDB(t), "user@outlook.com")
	r.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	r.Sleep = func(time.Duration) {}
	r.Now = func() time.Time { return time.Date(2021, 8, 10, 12, 0, 0, 0, time.UTC) }
	r.Retries = 2
	r.HomeURL = "https://home.example/"
	r.BingURL = "https://bing.example/"

	r.Factory = tasks.NewFactory(d, t.TempDir())
	r.Factory.Log = r.Log
	r.Factory.Sleep = r.Sleep
	r.Factory.Now = r.Now
	return r
}

func TestAggregate(t *testing.T) {
	res := func(outcomes ...Outcome) []StepResult {
		out := make([]StepResult, len(outcomes))
		for i, o := range outcomes {
			out[i] = StepResult{Outcome: o}
		}
		return out
	}

	cases := []struct {
		name  string
		steps []StepResult
		want  Outcome
	}{
		{"empty", nil, OutcomeSkipped},
		{"all skipped", res(OutcomeSkipped, OutcomeSkipped), OutcomeSkipped},
		{"any failure", res(OutcomeSuccess, OutcomeFailure, OutcomeSkipped), OutcomeFailure},
		{"success with skips", res(OutcomeSuccess, OutcomeSkipped), OutcomeSuccess},
		{"all success", res(OutcomeSuccess, OutcomeSuccess), OutcomeSuccess},
	}
	for _, c := range cases {
		if got := Aggregate(c.steps); got != c.want {
			t.Errorf("%s: Aggregate = %s, want %s", c.name, got, c.want)
		}
	}
}

// dashCard builds a dashboard activity card whose marker flips to done when
// the card is clicked.
func dashCard(title string, done bool) *browser.FakeElement {
	marker := &browser.FakeElement{}
	if done {
		marker.SetAttr("class", "mee-icon mee-icon-SkypeCircleCheck")
	} else {
		marker.SetAttr("class", "mee-icon mee-icon-AddMedium")
	}

	el := &browser.FakeElement{OnClick: func() error {
		marker.SetAttr("class", "mee-icon mee-icon-SkypeCircleCheck")
		return nil
	}}
	el.AddChild(browser.CSS("mee-rewards-points > div > div > span.mee-icon"), marker)
	el.AddChild(browser.CSS("div.contentContainer > h3"), &browser.FakeElement{Text: title})
	el.AddChild(browser.CSS("div.contentContainer > p"), &browser.FakeElement{Text: "descrizione"})
	return el
}

func addDailyCards(page *browser.FakePage, done ...bool) {
	sel := browser.CSS("#daily-sets > mee-card-group > div > mee-card > div > card-content > mee-rewards-daily-set-item-content > div")
	for i, d := range done {
		page.Add(sel, dashCard(fmt.Sprintf("Card %d", i), d))
	}
}

func TestRunToCompletionFinishesActivities(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)

	page := d.Page(r.HomeURL)
	// Card 0 is to-do and completes on click; the rest of today's set and
	// tomorrow's preview are already done.
	addDailyCards(page, false, true, true, true, true, true)

	ctx := context.Background()
	if err := r.RunToCompletion(ctx, tasks.KindActivity, r.Retries); err != nil {
		t.Fatalf("RunToCompletion: %v", err)
	}

	recs, err := r.Completions.ListForDay(ctx, r.Email, r.Now())
	if err != nil {
		t.Fatalf("ListForDay: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3 (today's set)", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != string(tasks.StatusDone) {
			t.Errorf("record %q status = %s, want DONE", rec.Title, rec.Status)
		}
	}
}

func TestRunToCompletionBudgetExhausted(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)

	page := d.Page(r.HomeURL)
	sel := browser.CSS("#daily-sets > mee-card-group > div > mee-card > div > card-content > mee-rewards-daily-set-item-content > div")
	// Two cards stay to-do forever: their click does not change the marker.
	for i := 0; i < 6; i++ {
		el := &browser.FakeElement{}
		class := "mee-icon mee-icon-SkypeCircleCheck"
		if i < 2 {
			class = "mee-icon mee-icon-AddMedium"
		}
		el.AddChild(browser.CSS("mee-rewards-points > div > div > span.mee-icon"),
			(&browser.FakeElement{}).SetAttr("class", class))
		el.AddChild(browser.CSS("div.contentContainer > h3"), &browser.FakeElement{Text: fmt.Sprintf("Card %d", i)})
		el.AddChild(browser.CSS("div.contentContainer > p"), &browser.FakeElement{Text: "descrizione"})
		page.Add(sel, el)
	}

	err := r.RunToCompletion(context.Background(), tasks.KindActivity, 2)
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want IncompleteError", err)
	}
	if incomplete.Count != 2 {
		t.Errorf("incomplete count = %d, want 2", incomplete.Count)
	}
	if incomplete.Kind != tasks.KindActivity {
		t.Errorf("incomplete kind = %s, want activity", incomplete.Kind)
	}
}

// staleHandleFake invalidates every element handle on page load, the way a
// real WebDriver does. Handles located before a Navigate or Refresh come
// back as stale afterwards.
type staleHandleFake struct {
	*browser.Fake
	live map[browser.Element]bool
}

func newStaleHandleFake() *staleHandleFake {
	return &staleHandleFake{Fake: browser.NewFake(), live: map[browser.Element]bool{}}
}

func (f *staleHandleFake) Navigate(url string) error {
	f.live = map[browser.Element]bool{}
	return f.Fake.Navigate(url)
}

func (f *staleHandleFake) Refresh() error {
	f.live = map[browser.Element]bool{}
	return f.Fake.Refresh()
}

func (f *staleHandleFake) check(op string, el browser.Element) error {
	if !f.live[el] {
		return fmt.Errorf("%s: stale element: %w", op, browser.ErrNotFound)
	}
	return nil
}

func (f *staleHandleFake) Locate(sel browser.Selector) (browser.Element, error) {
	el, err := f.Fake.Locate(sel)
	if err != nil {
		return nil, err
	}
	f.live[el] = true
	return el, nil
}

func (f *staleHandleFake) LocateAll(sel browser.Selector) ([]browser.Element, error) {
	els, err := f.Fake.LocateAll(sel)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		f.live[el] = true
	}
	return els, nil
}

func (f *staleHandleFake) LocateIn(scope browser.Element, sel browser.Selector) (browser.Element, error) {
	if err := f.check("locate in", scope); err != nil {
		return nil, err
	}
	el, err := f.Fake.LocateIn(scope, sel)
	if err != nil {
		return nil, err
	}
	f.live[el] = true
	return el, nil
}

func (f *staleHandleFake) LocateAllIn(scope browser.Element, sel browser.Selector) ([]browser.Element, error) {
	if err := f.check("locate all in", scope); err != nil {
		return nil, err
	}
	els, err := f.Fake.LocateAllIn(scope, sel)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		f.live[el] = true
	}
	return els, nil
}

func (f *staleHandleFake) Click(el browser.Element) error {
	if err := f.check("click", el); err != nil {
		return err
	}
	return f.Fake.Click(el)
}

func (f *staleHandleFake) SendKeys(el browser.Element, keys string) error {
	if err := f.check("send keys", el); err != nil {
		return err
	}
	return f.Fake.SendKeys(el, keys)
}

func (f *staleHandleFake) GetAttribute(el browser.Element, name string) (string, error) {
	if err := f.check("get attribute", el); err != nil {
		return "", err
	}
	return f.Fake.GetAttribute(el, name)
}

func (f *staleHandleFake) GetText(el browser.Element) (string, error) {
	if err := f.check("get text", el); err != nil {
		return "", err
	}
	return f.Fake.GetText(el)
}

// A pass over several to-do tasks must not reload the dashboard between
// attempts: the remaining cards' handles would stale and every pass would
// complete a single task, burning the whole budget on a working dashboard.
func TestRunToCompletionPassSurvivesStaleHandles(t *testing.T) {
	d := newStaleHandleFake()
	r := newTestRunner(t, d)

	page := d.Page(r.HomeURL)
	addDailyCards(page, false, false, false, true, true, true)

	ctx := context.Background()
	if err := r.RunToCompletion(ctx, tasks.KindActivity, 2); err != nil {
		t.Fatalf("RunToCompletion: %v", err)
	}

	recs, err := r.Completions.ListForDay(ctx, r.Email, r.Now())
	if err != nil {
		t.Fatalf("ListForDay: %v", err)
	}
	done := 0
	for _, rec := range recs {
		if rec.Status == string(tasks.StatusDone) {
			done++
		}
	}
	if done != 3 {
		t.Fatalf("%d of %d records DONE, want all 3 to-do cards done in one pass", done, len(recs))
	}
}

const dashboardSource = `<html><script>
var dashboard = {
  "userStatus": {
    "levelInfo": {"activeLevel": "Level2"},
    "availablePoints": 150,
    "counters": {
      "pcSearch": [{"pointProgress": 87, "pointProgressMax": 90}],
      "mobileSearch": [{"pointProgress": 57, "pointProgressMax": 60}]
    }
  }
};
</script></html>`

func TestRunProfile(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)

	home := d.Page(r.HomeURL)
	home.Source = dashboardSource
	addDailyCards(home, true, true, true, true, true, true)

	box := &browser.FakeElement{}
	d.Page(r.BingURL).Add(browser.CSS("#sb_form_q"), box)

	ctx := context.Background()
	steps := r.RunProfile(ctx)

	wantOrder := []Step{
		StepStartSession, StepGetDashboard, StepPunchcards, StepPromotions,
		StepPCSearches, StepMobileSearches, StepEndSession,
	}
	if len(steps) != len(wantOrder) {
		t.Fatalf("got %d steps, want %d: %+v", len(steps), len(wantOrder), steps)
	}
	for i, s := range steps {
		if s.Step != wantOrder[i] {
			t.Errorf("step %d = %s, want %s", i, s.Step, wantOrder[i])
		}
		if s.Outcome != OutcomeSuccess {
			t.Errorf("step %s outcome = %s (%s), want SUCCESS", s.Step, s.Outcome, s.Explanation)
		}
	}
	if got := Aggregate(steps); got != OutcomeSuccess {
		t.Errorf("aggregate = %s, want SUCCESS", got)
	}

	// Both quotas are 1, padded by the fixed margin; every search types the
	// query and then the submit key.
	wantSearches := 2 * (1 + searchMargin)
	if len(box.Typed) != 2*wantSearches {
		t.Errorf("search box received %d key batches, want %d", len(box.Typed), 2*wantSearches)
	}
	if d.UserAgent != desktopUserAgent {
		t.Errorf("user agent left as %q, want desktop restored", d.UserAgent)
	}

	// Start and end snapshots of the same figure.
	first, err := r.Points.FirstForDay(ctx, r.Email, r.Now())
	if err != nil {
		t.Fatalf("FirstForDay: %v", err)
	}
	if first == nil || first.Points != 150 {
		t.Fatalf("first snapshot = %+v, want 150 points", first)
	}
	delta, err := r.Points.DeltaForDay(ctx, r.Email, r.Now())
	if err != nil {
		t.Fatalf("DeltaForDay: %v", err)
	}
	if delta != 0 {
		t.Errorf("delta = %d, want 0", delta)
	}
}

func TestGetDashboardReportsPromotionWork(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)
	var buf bytes.Buffer
	r.Log = slog.New(slog.NewTextHandler(&buf, nil))

	// Day is pinned to 2021-08-10 by newTestRunner; the daily set is keyed
	// by that date. Completable promotions: the open daily quiz and the open
	// urlreward, not the completed or search-typed ones.
	home := d.Page(r.HomeURL)
	home.Source = `<html><script>
var dashboard = {"userStatus": {"levelInfo": {"activeLevel": "Level2"}, "availablePoints": 150, "counters": {}},
"dailySetPromotions": {"08/10/2021": [
  {"name": "d1", "promotionType": "quiz", "complete": false},
  {"name": "d2", "promotionType": "urlreward", "complete": true}]},
"morePromotions": [
  {"name": "m1", "promotionType": "urlreward", "complete": false},
  {"name": "m2", "promotionType": "search", "complete": false}]};
</script></html>`

	d.Navigate(r.HomeURL)
	if err := r.getDashboard(context.Background()); err != nil {
		t.Fatalf("getDashboard: %v", err)
	}
	if !strings.Contains(buf.String(), "promotions_todo=2") {
		t.Errorf("dashboard log does not report the 2 completable promotions:\n%s", buf.String())
	}
}

func TestRunProfileHonorsSkips(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)
	r.SkipActivities = true
	r.SkipPunchcards = true
	r.SkipSearches = true

	home := d.Page(r.HomeURL)
	home.Source = dashboardSource

	steps := r.RunProfile(context.Background())
	byStep := map[Step]Outcome{}
	for _, s := range steps {
		byStep[s.Step] = s.Outcome
	}

	for _, step := range []Step{StepPunchcards, StepPromotions, StepPCSearches, StepMobileSearches} {
		if byStep[step] != OutcomeSkipped {
			t.Errorf("step %s = %s, want SKIPPED", step, byStep[step])
		}
	}
	for _, step := range []Step{StepStartSession, StepGetDashboard, StepEndSession} {
		if byStep[step] != OutcomeSuccess {
			t.Errorf("step %s = %s, want SUCCESS", step, byStep[step])
		}
	}
	if got := Aggregate(steps); got != OutcomeSuccess {
		t.Errorf("aggregate = %s, want SUCCESS", got)
	}
}

// loginRedirectFake pretends every navigation landed on the login host.
type loginRedirectFake struct {
	*browser.Fake
}

func (f *loginRedirectFake) CurrentURL() (string, error) {
	return "https://login.live.com/ppsecure/post.srf", nil
}

func TestRunProfileAbortsOn2FA(t *testing.T) {
	inner := browser.NewFake()
	d := &loginRedirectFake{Fake: inner}
	r := newTestRunner(t, d)

	// The login page shows the proof chooser.
	inner.Page(r.HomeURL).Add(browser.ID("idDiv_SAOTCS_Proofs"), &browser.FakeElement{})

	steps := r.RunProfile(context.Background())
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want only the aborted start: %+v", len(steps), steps)
	}
	if steps[0].Step != StepStartSession || steps[0].Outcome != OutcomeFailure {
		t.Fatalf("step = %+v, want failed START_SESSION", steps[0])
	}
	if steps[0].Explanation != Err2FADetected.Error() {
		t.Errorf("explanation = %q, want 2FA", steps[0].Explanation)
	}
	if got := Aggregate(steps); got != OutcomeFailure {
		t.Errorf("aggregate = %s, want FAILURE", got)
	}
}

func TestMobileSearchesNeedLevelTwo(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)

	home := d.Page(r.HomeURL)
	home.Source = `<html><script>
var dashboard = {"userStatus": {"levelInfo": {"activeLevel": "Level1"},
"availablePoints": 10,
"counters": {"mobileSearch": [{"pointProgress": 0, "pointProgressMax": 60}]}}};
</script></html>`

	d.Navigate(r.HomeURL)
	if err := r.getDashboard(context.Background()); err != nil {
		t.Fatalf("getDashboard: %v", err)
	}
	if err := r.runSearches(true); err != nil {
		t.Fatalf("runSearches(mobile): %v", err)
	}
	if d.UserAgent != "" {
		t.Errorf("user agent switched to %q for a level-1 account", d.UserAgent)
	}
}

func TestSearchesWithoutDashboardFail(t *testing.T) {
	d := browser.NewFake()
	r := newTestRunner(t, d)

	if err := r.runSearches(false); err == nil {
		t.Fatal("runSearches succeeded without a dashboard snapshot")
	}
}
