package browser

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a Locate call matched no element. It is a
// transient UI condition: callers retry locally or via the outer retry loop.
var ErrNotFound = errors.New("element not found")

// TransportError reports a fault in the driver or browser itself (crash,
// disconnect, dead session). It aborts the current task attempt once local
// retries are exhausted but never crashes the process.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("browser transport fault during %s", e.Op)
	}
	return fmt.Sprintf("browser transport fault during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a transport fault.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
