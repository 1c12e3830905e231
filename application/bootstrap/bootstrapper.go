// Package bootstrap starts a browser session and brings it to a known start page,
// retrying the whole start-up sequence a bounded number of times.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"browserboot/core/event"
	"browserboot/core/eventbus"
	"browserboot/core/step"
	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
)

const (
	DefaultMaxAttempts     = 3
	DefaultPageLoadTimeout = 30 * time.Second
)

// Config holds configuration for creating a Bootstrapper.
type Config struct {
	Launcher browser.Launcher
	Profiles *launch.Registry

	// Engine labels events and log lines; it does not select the launcher.
	Engine string

	MaxAttempts     int
	PageLoadTimeout time.Duration

	// CIBinaryPath is the browser binary used by modes that require one.
	CIBinaryPath string

	EventBus eventbus.EventBus
	Logger   *slog.Logger
}

// Bootstrapper runs the start-up sequence against a Launcher.
// It is safe for concurrent use; each call owns its session.
type Bootstrapper struct {
	launcher        browser.Launcher
	profiles        *launch.Registry
	engine          string
	maxAttempts     int
	pageLoadTimeout time.Duration
	ciBinaryPath    string
	eventBus        eventbus.EventBus
	logger          *slog.Logger
}

// New creates a Bootstrapper. Zero MaxAttempts and PageLoadTimeout take the defaults.
func New(cfg *Config) (*Bootstrapper, error) {
	if cfg == nil || cfg.Launcher == nil {
		return nil, fmt.Errorf("%w: launcher is required", ErrInvalidConfiguration)
	}
	if cfg.Profiles == nil {
		return nil, fmt.Errorf("%w: profile registry is required", ErrInvalidConfiguration)
	}

	b := &Bootstrapper{
		launcher:        cfg.Launcher,
		profiles:        cfg.Profiles,
		engine:          cfg.Engine,
		maxAttempts:     cfg.MaxAttempts,
		pageLoadTimeout: cfg.PageLoadTimeout,
		ciBinaryPath:    cfg.CIBinaryPath,
		eventBus:        cfg.EventBus,
		logger:          cfg.Logger,
	}

	if b.maxAttempts == 0 {
		b.maxAttempts = DefaultMaxAttempts
	}
	if b.maxAttempts < 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidConfiguration, cfg.MaxAttempts)
	}
	if b.pageLoadTimeout == 0 {
		b.pageLoadTimeout = DefaultPageLoadTimeout
	}
	if b.pageLoadTimeout < 0 {
		return nil, fmt.Errorf("%w: page load timeout must be positive, got %s", ErrInvalidConfiguration, cfg.PageLoadTimeout)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b, nil
}

// MaxAttempts returns the number of attempts made per call.
func (b *Bootstrapper) MaxAttempts() int {
	return b.maxAttempts
}

// Option adjusts a single Bootstrap call.
type Option func(*options)

type options struct {
	clearSessionState bool
}

// WithClearSessionState controls whether cookies are deleted before navigating.
// The default is true.
func WithClearSessionState(clear bool) Option {
	return func(o *options) {
		o.clearSessionState = clear
	}
}

// Bootstrap launches a browser for mode, navigates it to endpoint and maximizes
// the window. On success the caller owns the returned session and must close it.
//
// Driver failures are retried up to MaxAttempts times; the partial session of a
// failed attempt is closed first. Any other error, including cancellation of
// ctx, ends the call immediately.
func (b *Bootstrapper) Bootstrap(ctx context.Context, endpoint *url.URL, mode launch.Mode, opts ...Option) (browser.Session, error) {
	o := options{clearSessionState: true}
	for _, opt := range opts {
		opt(&o)
	}

	if endpoint == nil {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfiguration)
	}

	profile, err := b.resolveProfile(mode)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	target := endpoint.String()
	plan := step.Plan(o.clearSessionState)
	logger := b.logger.With("run_id", runID, "mode", mode.String())

	logger.Info("Bootstrap started", "endpoint", target, "max_attempts", b.maxAttempts)
	b.publish(event.NewBootstrapStarted(runID, mode, b.engine, target, b.maxAttempts))

	failure := &StartupFailure{}
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			b.publish(event.NewBootstrapFailed(runID, attempt-1, err))
			return nil, err
		}

		session, failed, err := b.attempt(ctx, logger, profile, target, plan)
		if err == nil {
			logger.Info("Browser ready", "attempt", attempt)
			b.publish(event.NewBootstrapSucceeded(runID, attempt))
			return session, nil
		}

		logger.Warn("Attempt failed", "attempt", attempt, "step", failed.String(), "error", err)
		b.publish(event.NewAttemptFailed(runID, attempt, failed, err))

		if ctx.Err() != nil || !browser.IsDriverError(err) {
			err = fmt.Errorf("%s step failed: %w", failed, err)
			b.publish(event.NewBootstrapFailed(runID, attempt, err))
			return nil, err
		}

		failure.add(attempt, err)
	}

	logger.Error("Bootstrap failed", "attempts", b.maxAttempts, "error", failure)
	b.publish(event.NewBootstrapFailed(runID, b.maxAttempts, failure))
	return nil, failure
}

// resolveProfile builds the launch profile for mode before any attempt is made.
// A missing CI binary path is not checked here; the launcher reports it as a
// driver failure on every attempt.
func (b *Bootstrapper) resolveProfile(mode launch.Mode) (*launch.Profile, error) {
	profile, err := b.profiles.Resolve(mode, launch.Overrides{BinaryPath: b.ciBinaryPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return profile, nil
}

// attempt runs one pass of the plan. On failure it closes the partial session
// and reports the step that failed.
func (b *Bootstrapper) attempt(ctx context.Context, logger *slog.Logger, profile *launch.Profile, target string, plan []step.Step) (browser.Session, step.Step, error) {
	var session browser.Session

	for _, st := range plan {
		if st.RequiresSession() && session == nil {
			return nil, st, errors.New("launcher returned no session")
		}

		var err error

		switch st {
		case step.Launch:
			session, err = b.launcher.Launch(ctx, profile.Clone())
		case step.PageLoadTimeout:
			err = session.SetPageLoadTimeout(ctx, b.pageLoadTimeout)
		case step.ClearCookies:
			err = session.DeleteAllCookies(ctx)
		case step.Navigate:
			err = session.Navigate(ctx, target)
		case step.Maximize:
			err = session.Maximize(ctx)
		default:
			err = fmt.Errorf("unsupported step %s", st)
		}

		if err != nil {
			if session != nil {
				if closeErr := session.Close(); closeErr != nil {
					logger.Debug("Failed to close partial session", "error", closeErr)
				}
			}
			return nil, st, err
		}
	}

	return session, plan[len(plan)-1], nil
}

func (b *Bootstrapper) publish(e event.Event) {
	if b.eventBus != nil {
		b.eventBus.Publish(e)
	}
}
