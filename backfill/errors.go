package backfill

import (
	"errors"
	"fmt"
)

// ErrInterrupted is raised when the context passed to Produce is
// cancelled; Consume does not check its context and never returns it.
// Produce's parallel workers swallow this error
// themselves and return quietly; Produce re-raises it after join if
// the context was cancelled, even when no worker did, since workers
// are designed to swallow it silently.
var ErrInterrupted = errors.New("backfill: interrupted")

// RecencyViolation is raised when a chunk's recency for a key goes
// backwards relative to the previous chunk seen for that same key
// within one Consumer.
type RecencyViolation struct {
	Key      string
	Previous int64
	Got      int64
}

func (e *RecencyViolation) Error() string {
	return fmt.Sprintf("backfill: recency went backwards for key %q: %d -> %d", e.Key, e.Previous, e.Got)
}
