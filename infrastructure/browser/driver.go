// Package browser provides browser automation infrastructure.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"browserboot/domain/launch"
)

// Supported engine names.
const (
	EngineChromeDP   = "chromedp"
	EnginePlaywright = "playwright"
	EngineSelenium   = "selenium"
)

// ErrUnknownEngine is returned by NewLauncher for unsupported engine names.
var ErrUnknownEngine = errors.New("unknown browser engine")

// errSessionClosed is wrapped into a DriverError when a closed session is used.
var errSessionClosed = errors.New("session closed")

// Launcher starts browser sessions from a resolved launch profile.
// This abstraction allows for different browser implementations (ChromeDP, Playwright, Selenium).
type Launcher interface {
	// Launch spawns or connects to a browser configured by profile.
	Launch(ctx context.Context, profile *launch.Profile) (Session, error)
}

// ManagedLauncher is a Launcher holding process-wide resources that must be released.
type ManagedLauncher interface {
	Launcher
	io.Closer
}

// Session is a live browser session. It is owned by whoever received it
// from Launch and must be closed by that owner.
type Session interface {
	// SetPageLoadTimeout bounds how long navigations may take.
	SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error

	// DeleteAllCookies removes all cookies stored by the browser.
	DeleteAllCookies(ctx context.Context) error

	// Navigate navigates to the specified URL.
	Navigate(ctx context.Context, url string) error

	// Maximize maximizes the browser window.
	Maximize(ctx context.Context) error

	// Close ends the session and releases the browser process.
	Close() error
}

// Screenshotter is implemented by sessions that can capture the current page.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// DriverError is a failure reported by the underlying automation driver.
// Start-up code treats it as transient.
type DriverError struct {
	Engine string
	Op     string
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Engine, e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// IsDriverError reports whether err is, or wraps, a DriverError.
func IsDriverError(err error) bool {
	var de *DriverError
	return errors.As(err, &de)
}

// driverErr wraps err as a DriverError. It returns nil for a nil err.
func driverErr(engine, op string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Engine: engine, Op: op, Err: err}
}

// DriverConfig holds engine-level configuration shared by all sessions of a launcher.
type DriverConfig struct {
	// WindowWidth is the initial browser window width. Zero keeps the browser default.
	WindowWidth int

	// WindowHeight is the initial browser window height.
	WindowHeight int

	// MuteAudio mutes browser audio.
	MuteAudio bool

	// HideScrollbars hides scrollbars.
	HideScrollbars bool

	// ProfileRoot is where throwaway user data directories are created.
	// Empty means os.TempDir().
	ProfileRoot string

	// DriverPath is the chromedriver binary used by the selenium engine.
	// Empty means lookup on PATH.
	DriverPath string

	// DriverPort is the port of the local chromedriver service.
	DriverPort int

	// RemoteURL points the selenium engine at an existing WebDriver endpoint
	// instead of a local chromedriver service.
	RemoteURL string
}

// DefaultDriverConfig returns default browser configuration.
func DefaultDriverConfig() *DriverConfig {
	return &DriverConfig{
		WindowWidth:    1920,
		WindowHeight:   1080,
		MuteAudio:      true,
		HideScrollbars: false,
		DriverPort:     9515,
	}
}

// NewLauncher creates the launcher for the named engine.
func NewLauncher(engine string, config *DriverConfig, logger *slog.Logger) (ManagedLauncher, error) {
	switch engine {
	case "", EngineChromeDP:
		return NewChromeDPLauncher(config, logger), nil
	case EnginePlaywright:
		return NewPlaywrightLauncher(config, logger), nil
	case EngineSelenium:
		return NewSeleniumLauncher(config, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Engines returns the supported engine names.
func Engines() []string {
	return []string{EngineChromeDP, EnginePlaywright, EngineSelenium}
}
