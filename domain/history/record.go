// Package history describes the outcome of past bootstrap runs.
package history

import (
	"time"

	"browserboot/domain/launch"
)

// Record is the outcome of one Bootstrap call.
type Record struct {
	ID         string
	Mode       launch.Mode
	Engine     string
	Endpoint   string
	Attempts   int
	Failures   []Failure
	Succeeded  bool
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failure describes one failed attempt inside a run.
type Failure struct {
	Attempt int
	Step    string
	Message string
}

// Duration returns how long the run took.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FirstAttempt reports whether the run succeeded without a retry.
func (r *Record) FirstAttempt() bool {
	return r.Succeeded && r.Attempts == 1
}
