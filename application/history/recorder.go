// Package history records bootstrap runs from the event bus.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"browserboot/core/event"
	"browserboot/core/eventbus"
	domainhistory "browserboot/domain/history"
)

const defaultSaveTimeout = 5 * time.Second

// Recorder builds one history record per run from bootstrap events and saves
// it once the run has finished.
type Recorder struct {
	service     *domainhistory.Service
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	saveTimeout time.Duration

	mu             sync.Mutex
	runs           map[string]*domainhistory.Record
	subscriptionID string
}

// RecorderConfig holds configuration for the Recorder.
type RecorderConfig struct {
	Service     *domainhistory.Service
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
	SaveTimeout time.Duration
}

// NewRecorder creates a Recorder. Call Start to begin receiving events.
func NewRecorder(cfg *RecorderConfig) *Recorder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = defaultSaveTimeout
	}

	return &Recorder{
		service:     cfg.Service,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		saveTimeout: cfg.SaveTimeout,
		runs:        make(map[string]*domainhistory.Record),
	}
}

// Start subscribes to the event bus.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscriptionID != "" {
		return
	}
	r.subscriptionID = r.eventBus.Subscribe(r.handleEvent)
}

// Stop unsubscribes and discards runs that never finished.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subscriptionID == "" {
		return
	}
	r.eventBus.Unsubscribe(r.subscriptionID)
	r.subscriptionID = ""

	if n := len(r.runs); n > 0 {
		r.logger.Warn("Discarding unfinished runs", "count", n)
	}
	r.runs = make(map[string]*domainhistory.Record)
}

// Pending returns the number of runs started but not yet finished.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func (r *Recorder) handleEvent(e event.Event) {
	switch e := e.(type) {
	case *event.BootstrapStarted:
		r.mu.Lock()
		r.runs[e.RunID()] = &domainhistory.Record{
			ID:        e.RunID(),
			Mode:      e.Mode,
			Engine:    e.Engine,
			Endpoint:  e.Endpoint,
			StartedAt: e.StartedAt,
		}
		r.mu.Unlock()

	case *event.AttemptFailed:
		r.mu.Lock()
		if rec, ok := r.runs[e.RunID()]; ok {
			rec.Failures = append(rec.Failures, domainhistory.Failure{
				Attempt: e.Attempt,
				Step:    e.Step.String(),
				Message: errorString(e.Error),
			})
		}
		r.mu.Unlock()

	case *event.BootstrapSucceeded:
		r.finish(e.RunID(), func(rec *domainhistory.Record) {
			rec.Attempts = e.Attempts
			rec.Succeeded = true
			rec.FinishedAt = e.FinishedAt
		})

	case *event.BootstrapFailed:
		r.finish(e.RunID(), func(rec *domainhistory.Record) {
			rec.Attempts = e.Attempts
			rec.Error = errorString(e.Error)
			rec.FinishedAt = e.FinishedAt
		})
	}
}

// finish completes the run's record and saves it.
func (r *Recorder) finish(runID string, complete func(*domainhistory.Record)) {
	r.mu.Lock()
	rec, ok := r.runs[runID]
	delete(r.runs, runID)
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("Finish event for unknown run", "run_id", runID)
		return
	}
	complete(rec)

	ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
	defer cancel()

	if err := r.service.Save(ctx, rec); err != nil {
		r.logger.Error("Failed to save run record", "run_id", runID, "error", err)
		return
	}
	r.logger.Debug("Run recorded", "run_id", runID, "attempts", rec.Attempts, "succeeded", rec.Succeeded)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
