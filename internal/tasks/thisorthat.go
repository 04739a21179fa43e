package tasks

import (
	"fmt"
	"regexp"
	"time"

	"automsr/internal/browser"
	"automsr/internal/ledger"
)

var (
	selTotFooter   = browser.Class("bt_Quefooter")
	selTotFeedback = browser.CSS("#nextQuestionContainer > div > div > div > div.btQueInfo > div.bt_optionVS")

	totRoundRe = regexp.MustCompile(`(\d+)\D+(\d+)`)
)

const (
	totFooterAttempts = 5
	totFooterInterval = 2 * time.Second
	totFeedbackWait   = 2 * time.Second

	// totRoundCeiling bounds the outer loop; the game has ledger.Rounds
	// rounds but the footer can briefly repeat a round across page states.
	totRoundCeiling = 3 * ledger.Rounds
)

// ThisOrThatActivity plays the two-choice guessing game. Correct answers are
// not knowable upfront, so each day's outcomes are recorded in a ledger and
// replayed on later runs of the same day.
type ThisOrThatActivity struct {
	activity
}

func (t *ThisOrThatActivity) Execute() error {
	d := t.f.Driver
	t.f.Sleep(time.Second)

	if start, err := d.Locate(selStartQuiz); err == nil {
		if err := d.Click(start); err != nil {
			t.f.Log.Debug("this-or-that start button click failed", "err", err)
		}
	}

	led, err := ledger.Load(t.f.LedgerDir, t.f.Now())
	if err != nil {
		return fmt.Errorf("load answer ledger: %w", err)
	}

	answered := false
	for i := 0; ; i++ {
		if i >= totRoundCeiling {
			return fmt.Errorf("this-or-that not complete after %d iterations", totRoundCeiling)
		}

		round, total, err := t.currentRound()
		if err != nil {
			// No footer means the game is over (or was already complete).
			// Anything learned this session is kept either way.
			t.f.Log.Info("no round footer, this-or-that finished")
			if !answered {
				return nil
			}
			if err := led.Save(); err != nil {
				return fmt.Errorf("save answer ledger: %w", err)
			}
			return nil
		}
		if round < 1 || round > total || round > ledger.Rounds {
			return fmt.Errorf("round %d out of range 1..%d", round, total)
		}
		t.f.Log.Info("this-or-that round", "round", round, "total", total)

		chosen := led.Get(round - 1)
		if chosen == ledger.Missing {
			chosen = ledger.Answer(t.f.Rand(2))
		}
		if err := t.pick(chosen); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		t.f.Sleep(totFeedbackWait)
		led.Learn(round-1, chosen, t.feedback())
		answered = true

		if round == total {
			break
		}
	}

	if err := led.Save(); err != nil {
		return fmt.Errorf("save answer ledger: %w", err)
	}
	return nil
}

// currentRound polls the footer counter, "3 di 10" or similar, for the
// current and total round numbers.
func (t *ThisOrThatActivity) currentRound() (round, total int, err error) {
	d := t.f.Driver
	for attempt := 0; attempt < totFooterAttempts; attempt++ {
		if attempt > 0 {
			t.f.Sleep(totFooterInterval)
		}
		el, lerr := d.Locate(selTotFooter)
		if lerr != nil {
			err = lerr
			continue
		}
		text, terr := d.GetText(el)
		if terr != nil {
			err = terr
			continue
		}
		m := totRoundRe.FindStringSubmatch(text)
		if m == nil {
			err = fmt.Errorf("footer %q does not carry a round counter", text)
			continue
		}
		fmt.Sscanf(m[1], "%d", &round)
		fmt.Sscanf(m[2], "%d", &total)
		return round, total, nil
	}
	return 0, 0, err
}

func (t *ThisOrThatActivity) pick(a ledger.Answer) error {
	d := t.f.Driver
	sel := browser.ID(fmt.Sprintf("rqAnswerOption%d", int(a)))
	el, err := d.Locate(sel)
	if err == nil {
		err = d.Click(el)
	}
	if err != nil {
		return fmt.Errorf("pick option %d: %w", int(a), err)
	}
	return nil
}

// feedback classifies the post-answer banner. An unreadable banner counts as
// undetermined, which makes the ledger forget the round rather than record a
// guess as fact.
func (t *ThisOrThatActivity) feedback() ledger.Feedback {
	d := t.f.Driver
	el, err := d.Locate(selTotFeedback)
	if err != nil {
		return ledger.FeedbackUndetermined
	}
	class, err := d.GetAttribute(el, "class")
	if err != nil {
		return ledger.FeedbackUndetermined
	}
	return ledger.ClassifyFeedback(class)
}
