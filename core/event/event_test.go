package event

import (
	"errors"
	"testing"

	"browserboot/core/step"
	"browserboot/domain/launch"
)

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		event    Event
		expected string
	}{
		{NewBootstrapStarted("r1", launch.ModeHeadless, "chromedp", "https://example.test", 3), "BootstrapStarted"},
		{NewAttemptFailed("r1", 1, step.Navigate, errors.New("test")), "AttemptFailed"},
		{NewBootstrapSucceeded("r1", 1), "BootstrapSucceeded"},
		{NewBootstrapFailed("r1", 3, errors.New("test")), "BootstrapFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.event.EventName(); got != tt.expected {
				t.Errorf("EventName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunEvent_RunID(t *testing.T) {
	tests := []struct {
		name     string
		event    RunEvent
		expected string
	}{
		{"BootstrapStarted", NewBootstrapStarted("run-123", launch.ModeStandard, "chromedp", "", 3), "run-123"},
		{"AttemptFailed", NewAttemptFailed("run-456", 2, step.Launch, nil), "run-456"},
		{"BootstrapSucceeded", NewBootstrapSucceeded("run-789", 1), "run-789"},
		{"BootstrapFailed", NewBootstrapFailed("run-abc", 3, nil), "run-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.RunID(); got != tt.expected {
				t.Errorf("RunID() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAttemptFailed_Fields(t *testing.T) {
	cause := errors.New("chrome failed to start")
	e := NewAttemptFailed("r1", 2, step.Launch, cause)

	if e.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", e.Attempt)
	}
	if e.Step != step.Launch {
		t.Errorf("Step = %v, want Launch", e.Step)
	}
	if !errors.Is(e.Error, cause) {
		t.Errorf("Error = %v, want %v", e.Error, cause)
	}
}

func TestBootstrapStarted_Fields(t *testing.T) {
	e := NewBootstrapStarted("r1", launch.ModeCIAgent, "selenium", "https://example.test/login", 5)

	if e.Mode != launch.ModeCIAgent {
		t.Errorf("Mode = %v, want ci-agent", e.Mode)
	}
	if e.Engine != "selenium" {
		t.Errorf("Engine = %v, want selenium", e.Engine)
	}
	if e.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", e.MaxAttempts)
	}
	if e.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}
}
