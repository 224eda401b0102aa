package dispatch

import "fmt"

// AssertionViolation signals a precondition bug at the dispatcher
// boundary — e.g. unsharding a write with more than one response, or a
// hash-unshard distribution merge called with no responses or with
// responses whose smallest sampled keys differ. It is always returned as an error for the caller to
// decide how to treat, rather than panicking in production code paths.
type AssertionViolation struct {
	Message string
}

func (e *AssertionViolation) Error() string {
	return "dispatch: assertion violation: " + e.Message
}

func assertionViolation(format string, args ...interface{}) *AssertionViolation {
	return &AssertionViolation{Message: fmt.Sprintf(format, args...)}
}
