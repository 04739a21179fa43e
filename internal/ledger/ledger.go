// Package ledger persists the learned answers for the day's binary-choice
// quiz. One CSV file per calendar day, ten rows, one per round.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Rounds is the fixed number of rounds in the binary-choice quiz.
const Rounds = 10

// Answer is a learned (or still unknown) choice for one round.
type Answer int

const (
	Missing Answer = -1
	First   Answer = 0
	Second  Answer = 1
)

func (a Answer) Valid() bool {
	return a == Missing || a == First || a == Second
}

// Other returns the complement of a binary choice. Missing has no complement.
func (a Answer) Other() Answer {
	switch a {
	case First:
		return Second
	case Second:
		return First
	default:
		return Missing
	}
}

// Feedback is the classification of the page's reaction to a chosen answer.
type Feedback int

const (
	FeedbackUndetermined Feedback = iota
	FeedbackCorrect
	FeedbackWrong
)

// ClassifyFeedback maps the class attribute of the feedback banner to a
// verdict. Anything unrecognized is undetermined.
func ClassifyFeedback(class string) Feedback {
	switch {
	case strings.Contains(class, "wrong"):
		return FeedbackWrong
	case strings.Contains(class, "correct"):
		return FeedbackCorrect
	default:
		return FeedbackUndetermined
	}
}

// Ledger holds the day's answers. Mutated in place during a run and written
// back only when the quiz signals it is finished.
type Ledger struct {
	path    string
	answers [Rounds]Answer
}

// FileName returns the ledger file name for a day.
func FileName(day time.Time) string {
	return fmt.Sprintf("thisorthat_%s.csv", day.Format("2006-01-02"))
}

// Load reads the day's ledger from dir. A missing file yields an empty
// ledger; it is not an error.
func Load(dir string, day time.Time) (*Ledger, error) {
	l := &Ledger{path: filepath.Join(dir, FileName(day))}
	for i := range l.answers {
		l.answers[i] = Missing
	}

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != 2 {
			return nil, fmt.Errorf("ledger row %d: want 2 columns, got %d", i, len(row))
		}
		round, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("ledger row %d round: %w", i, err)
		}
		value, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("ledger row %d answer: %w", i, err)
		}
		if round < 0 || round >= Rounds {
			return nil, fmt.Errorf("ledger row %d: round %d out of range", i, round)
		}
		a := Answer(value)
		if !a.Valid() {
			return nil, fmt.Errorf("ledger row %d: invalid answer %d", i, value)
		}
		l.answers[round] = a
	}
	return l, nil
}

// Save writes all ten rows back to the ledger file.
func (l *Ledger) Save() error {
	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"round", "answer"}); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	for round, a := range l.answers {
		row := []string{strconv.Itoa(round), strconv.Itoa(int(a))}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write ledger row %d: %w", round, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	return nil
}

// Get returns the learned answer for a zero-based round.
func (l *Ledger) Get(round int) Answer {
	return l.answers[round]
}

// Set stores an answer for a zero-based round.
func (l *Ledger) Set(round int, a Answer) {
	l.answers[round] = a
}

// Learn updates the slot for a round after the page's feedback on the chosen
// answer. Wrong feedback stores the complement (the choice is binary, so a
// proven-wrong answer pins the other option); correct feedback confirms the
// choice; undetermined feedback resets the slot to Missing.
func (l *Ledger) Learn(round int, chosen Answer, fb Feedback) {
	switch fb {
	case FeedbackWrong:
		l.answers[round] = chosen.Other()
	case FeedbackCorrect:
		l.answers[round] = chosen
	default:
		l.answers[round] = Missing
	}
}
