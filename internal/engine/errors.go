package engine

import (
	"errors"
	"fmt"

	"automsr/internal/tasks"
)

// Err2FADetected means the account requires interactive two-factor
// approval. The profile run cannot proceed; nothing retries past it.
var Err2FADetected = errors.New("2FA challenge detected")

// IncompleteError reports tasks still to-do after the retry budget ran out.
// It fails the owning step but never the sibling steps.
type IncompleteError struct {
	Kind  tasks.Kind
	Count int
}

func (e *IncompleteError) Error() string {
	word := e.Kind.Plural()
	if e.Count == 1 {
		word = e.Kind.Singular()
	}
	return fmt.Sprintf("cannot complete %d %s", e.Count, word)
}
