package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransientError marks a fetch failure worth retrying: timeouts, connection
// resets, rate limiting, upstream 5xx.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that retrying cannot fix: missing page,
// markup where the expected structure is absent.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }

// ErrSessionClosed is returned when a fetch is attempted on a closed session.
var ErrSessionClosed = errors.New("fetch session closed")

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func transient(op string, err error) error { return &TransientError{Op: op, Err: err} }
func permanent(op string, err error) error { return &PermanentError{Op: op, Err: err} }
