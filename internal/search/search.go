// Package search produces the query streams typed into the search box to
// earn search points.
package search

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"automsr/internal/browser"
)

// Generator yields the next string to type into the search box and how long
// to pause before submitting it. Strings may contain control keys; typing a
// backspace over the previous query is itself a new search.
type Generator interface {
	Next() (keys string, pause time.Duration)
}

// Kind names a generator in the configuration file.
type Kind string

const (
	KindRandom Kind = "random"
	KindPhrase Kind = "phrase"
)

// New builds the generator named by kind, seeded from the clock.
func New(kind Kind) (Generator, error) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	switch kind {
	case KindRandom, "":
		return NewRandom(rnd), nil
	case KindPhrase:
		return NewPhrase(rnd), nil
	default:
		return nil, fmt.Errorf("unknown search generator %q", kind)
	}
}

const randomWordLength = 70

// Random types one long random word, then erases it one character per
// search. Every erasure changes the query, so a single word funds dozens of
// searches.
type Random struct {
	rnd     *rand.Rand
	started bool
}

func NewRandom(rnd *rand.Rand) *Random {
	return &Random{rnd: rnd}
}

func (g *Random) Next() (string, time.Duration) {
	const pause = 1500 * time.Millisecond
	if g.started {
		return browser.KeyBackspace, pause
	}
	g.started = true

	b := make([]byte, randomWordLength)
	for i := range b {
		b[i] = byte('a' + g.rnd.Intn(26))
	}
	return string(b), pause
}

// Phrase types a short plausible sentence per search, erasing the previous
// one first. Pauses vary to look less mechanical.
type Phrase struct {
	rnd *rand.Rand
}

func NewPhrase(rnd *rand.Rand) *Phrase {
	return &Phrase{rnd: rnd}
}

// phraseWords is a small neutral lexicon; sentences built from it only need
// to be distinct, not meaningful.
var phraseWords = []string{
	"weather", "today", "news", "recipe", "history", "music", "travel",
	"science", "movie", "book", "garden", "coffee", "market", "river",
	"mountain", "city", "museum", "football", "bicycle", "camera",
	"island", "bridge", "library", "festival", "theater", "planet",
}

func (g *Phrase) Next() (string, time.Duration) {
	words := 5 + g.rnd.Intn(3)
	parts := make([]string, words)
	for i := range parts {
		parts[i] = phraseWords[g.rnd.Intn(len(phraseWords))]
	}

	// Enough backspaces to clear any sentence this generator can produce.
	clear := strings.Repeat(browser.KeyBackspace, 80)
	pause := 2*time.Second + time.Duration(g.rnd.Intn(3000))*time.Millisecond
	return clear + strings.Join(parts, " "), pause
}
