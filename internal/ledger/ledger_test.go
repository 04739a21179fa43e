package ledger

import (
	"testing"
	"time"
)

var day = time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)

func TestLoadMissingFileYieldsEmptyLedger(t *testing.T) {
	l, err := Load(t.TempDir(), day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for round := 0; round < Rounds; round++ {
		if got := l.Get(round); got != Missing {
			t.Fatalf("round %d = %d, want Missing", round, got)
		}
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	l, err := Load(dir, day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	l.Set(0, First)
	l.Set(3, Second)
	l.Set(9, First)
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(dir, day)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	want := map[int]Answer{0: First, 3: Second, 9: First}
	for round := 0; round < Rounds; round++ {
		expected, ok := want[round]
		if !ok {
			expected = Missing
		}
		if got := reloaded.Get(round); got != expected {
			t.Fatalf("round %d = %d, want %d", round, got, expected)
		}
	}
}

func TestLedgerIsPerDay(t *testing.T) {
	dir := t.TempDir()

	l, err := Load(dir, day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	l.Set(0, Second)
	if err := l.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tomorrow, err := Load(dir, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Load tomorrow: %v", err)
	}
	if got := tomorrow.Get(0); got != Missing {
		t.Fatalf("next day's ledger round 0 = %d, want Missing", got)
	}
}

func TestLearnWrongStoresComplement(t *testing.T) {
	l, _ := Load(t.TempDir(), day)

	l.Learn(4, First, FeedbackWrong)
	if got := l.Get(4); got != Second {
		t.Fatalf("after wrong First, round 4 = %d, want Second", got)
	}

	l.Learn(4, Second, FeedbackWrong)
	if got := l.Get(4); got != First {
		t.Fatalf("after wrong Second, round 4 = %d, want First", got)
	}
}

func TestLearnCorrectConfirmsChoice(t *testing.T) {
	l, _ := Load(t.TempDir(), day)
	l.Learn(7, Second, FeedbackCorrect)
	if got := l.Get(7); got != Second {
		t.Fatalf("round 7 = %d, want Second", got)
	}
}

func TestLearnUndeterminedResetsSlot(t *testing.T) {
	l, _ := Load(t.TempDir(), day)
	l.Set(2, First)
	l.Learn(2, First, FeedbackUndetermined)
	if got := l.Get(2); got != Missing {
		t.Fatalf("round 2 = %d, want Missing after undetermined feedback", got)
	}
}
