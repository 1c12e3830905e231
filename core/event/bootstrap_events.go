package event

import (
	"time"

	"browserboot/core/step"
	"browserboot/domain/launch"
)

// BootstrapStarted is published before the first attempt of a run.
type BootstrapStarted struct {
	baseRunEvent
	Mode        launch.Mode
	Engine      string
	Endpoint    string
	MaxAttempts int
	StartedAt   time.Time
}

func NewBootstrapStarted(runID string, mode launch.Mode, engine, endpoint string, maxAttempts int) *BootstrapStarted {
	return &BootstrapStarted{
		baseRunEvent: baseRunEvent{runID: runID},
		Mode:         mode,
		Engine:       engine,
		Endpoint:     endpoint,
		MaxAttempts:  maxAttempts,
		StartedAt:    time.Now(),
	}
}

func (e *BootstrapStarted) EventName() string {
	return "BootstrapStarted"
}

// AttemptFailed is published when a single attempt fails.
type AttemptFailed struct {
	baseRunEvent
	Attempt int
	Step    step.Step
	Error   error
}

func NewAttemptFailed(runID string, attempt int, s step.Step, err error) *AttemptFailed {
	return &AttemptFailed{
		baseRunEvent: baseRunEvent{runID: runID},
		Attempt:      attempt,
		Step:         s,
		Error:        err,
	}
}

func (e *AttemptFailed) EventName() string {
	return "AttemptFailed"
}

// BootstrapSucceeded is published when a run returns a ready session.
type BootstrapSucceeded struct {
	baseRunEvent
	Attempts   int
	FinishedAt time.Time
}

func NewBootstrapSucceeded(runID string, attempts int) *BootstrapSucceeded {
	return &BootstrapSucceeded{
		baseRunEvent: baseRunEvent{runID: runID},
		Attempts:     attempts,
		FinishedAt:   time.Now(),
	}
}

func (e *BootstrapSucceeded) EventName() string {
	return "BootstrapSucceeded"
}

// BootstrapFailed is published when a run gives up.
type BootstrapFailed struct {
	baseRunEvent
	Attempts   int
	Error      error
	FinishedAt time.Time
}

func NewBootstrapFailed(runID string, attempts int, err error) *BootstrapFailed {
	return &BootstrapFailed{
		baseRunEvent: baseRunEvent{runID: runID},
		Attempts:     attempts,
		Error:        err,
		FinishedAt:   time.Now(),
	}
}

func (e *BootstrapFailed) EventName() string {
	return "BootstrapFailed"
}
