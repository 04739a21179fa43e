package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"automsr/internal/browser"
)

var (
	selStartQuiz         = browser.ID("rqStartQuiz")
	selQuestionContainer = browser.ID("currentQuestionContainer")
	selQuestionLayout    = browser.CSS("#currentQuestionContainer > div")
	selQuizComplete      = browser.ID("quizCompleteContainer")
)

const (
	// answerOptions4/8 are the two known answer layouts.
	answerOptions4 = 4
	answerOptions8 = 8

	// questionPollAttempts bounds the wait for the question container to
	// appear after activation.
	questionPollAttempts = 5
	questionPollInterval = time.Second

	// quizRoundCeiling caps the completion loop; no known quiz exceeds it.
	quizRoundCeiling = 12
)

// QuizActivity answers a multi-round quiz by clicking through every choice
// until the completion indicator shows up.
type QuizActivity struct {
	activity
}

// innerQuiz builds a quiz runner that is not backed by a dashboard card,
// for quizzes embedded in punchcard sub-items.
func (f *Factory) innerQuiz() *QuizActivity {
	return &QuizActivity{activity: activity{f: f, status: StatusTodo}}
}

func (q *QuizActivity) Execute() error {
	d := q.f.Driver
	q.f.Sleep(time.Second)

	// The start button is absent when the quiz was begun on an earlier
	// attempt; that is fine.
	if start, err := d.Locate(selStartQuiz); err == nil {
		if err := d.Click(start); err != nil {
			q.f.Log.Debug("quiz start button click failed", "err", err)
		}
	} else {
		q.f.Log.Debug("no quiz start button, quiz already started?")
	}

	// No question container after a bounded wait means the quiz is already
	// finished, not an error.
	if !q.waitForQuestion() {
		q.f.Log.Info("no question container, quiz already finished")
		return nil
	}

	return q.answerRounds(q.answerIDs())
}

func (q *QuizActivity) waitForQuestion() bool {
	d := q.f.Driver
	for i := 0; i < questionPollAttempts; i++ {
		if _, err := d.Locate(selQuestionContainer); err == nil {
			return true
		}
		q.f.Sleep(questionPollInterval)
	}
	return false
}

// answerIDs determines the answer layout from the question container class:
// the text-based layout exposes 4 choices, every other one 8.
func (q *QuizActivity) answerIDs() []browser.Selector {
	d := q.f.Driver
	count := answerOptions8
	if layout, err := d.Locate(selQuestionLayout); err == nil {
		if class, err := d.GetAttribute(layout, "class"); err == nil && class == "textBasedMultiChoice" {
			count = answerOptions4
		}
	}

	ids := make([]browser.Selector, count)
	for i := range ids {
		ids[i] = browser.ID(fmt.Sprintf("rqAnswerOption%d", i))
	}
	return ids
}

func (q *QuizActivity) answerRounds(answers []browser.Selector) error {
	d := q.f.Driver
	oneRoundComplete := false

	for round := 0; !q.isOver(); round++ {
		if round >= quizRoundCeiling {
			return fmt.Errorf("quiz not complete after %d rounds", quizRoundCeiling)
		}
		q.f.Log.Info("quiz round started", "round", round+1)

		checkOver := true
		failedOnce := false
		for _, answer := range answers {
			q.f.Sleep(time.Second)

			// The indicator can appear mid-round; only the first choice of a
			// round needs the check, later ones would re-pay it for nothing.
			if checkOver && q.isOver() {
				return nil
			}
			checkOver = false

			el, err := d.Locate(answer)
			if err == nil {
				err = d.Click(el)
			}
			if err != nil {
				// A single miss per round is expected once a round has gone
				// through, the page swaps options out as they are consumed.
				if !oneRoundComplete || failedOnce {
					return fmt.Errorf("click %s: %w", answer.Value, err)
				}
				failedOnce = true
				q.f.Log.Warn("answer click failed, continuing", "answer", answer.Value, "err", err)
				continue
			}
		}

		oneRoundComplete = true
	}
	return nil
}

// isOver reports whether the quiz-complete indicator is present and shown.
func (q *QuizActivity) isOver() bool {
	d := q.f.Driver
	el, err := d.Locate(selQuizComplete)
	if err != nil {
		return false
	}
	return isDisplayed(d, el)
}

// isDisplayed approximates WebDriver visibility from the style attribute.
func isDisplayed(d browser.Driver, el browser.Element) bool {
	style, err := d.GetAttribute(el, "style")
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return false
		}
		return false
	}
	style = strings.ReplaceAll(style, " ", "")
	return !strings.Contains(style, "display:none") && !strings.Contains(style, "visibility:hidden")
}
