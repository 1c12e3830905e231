package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is returned when a call cannot be attempted at all.
// It is never retried.
var ErrInvalidConfiguration = errors.New("invalid bootstrap configuration")

// AttemptLog collects one entry per failed attempt, in attempt order.
type AttemptLog []string

// Add records the failure of the given 1-based attempt.
func (l *AttemptLog) Add(attempt int, err error) {
	*l = append(*l, fmt.Sprintf("Exception %d: %s", attempt, err))
}

// String joins the entries with single spaces.
func (l AttemptLog) String() string {
	return strings.Join(l, " ")
}

// StartupFailure is returned after every attempt has failed.
type StartupFailure struct {
	Log    AttemptLog
	Causes []error
}

func (f *StartupFailure) Error() string {
	return "failed to start web browser in a timely manner - " + f.Log.String()
}

// Unwrap exposes the cause of every attempt to errors.Is and errors.As.
func (f *StartupFailure) Unwrap() []error {
	return f.Causes
}

func (f *StartupFailure) add(attempt int, err error) {
	f.Log.Add(attempt, err)
	f.Causes = append(f.Causes, err)
}
