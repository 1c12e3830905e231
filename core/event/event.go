// Package event defines all events that can be published during a bootstrap run.
// Events describe progress and outcome and are consumed by recorders and loggers.
package event

// Event is the base interface for all events.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// RunEvent is an event that originates from a specific bootstrap run.
type RunEvent interface {
	Event
	// RunID returns the source run ID
	RunID() string
}

// baseRunEvent provides common implementation for run events.
type baseRunEvent struct {
	runID string
}

func (e *baseRunEvent) RunID() string {
	return e.runID
}
