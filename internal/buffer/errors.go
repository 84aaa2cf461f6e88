package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned when an operation targets an atom with no
	// live buffer.
	ErrNotOpen = errors.New("buffer: atom is not open")

	// ErrClosed is returned to work that was discarded because the
	// buffer was destroyed before the work completed.
	ErrClosed = errors.New("buffer: buffer closed")

	// ErrSaveInFlight is returned when a save attempt finds another
	// attempt already running. The second attempt is non-authoritative
	// and must not start a duplicate write.
	ErrSaveInFlight = errors.New("buffer: save already in flight")
)

// FlushError reports an explicit flush that exhausted its retry budget
// without persisting the draft. The draft is still intact; the caller
// must not discard the buffer.
type FlushError struct {
	Attempts int
	Err      error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("buffer: flush failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }
