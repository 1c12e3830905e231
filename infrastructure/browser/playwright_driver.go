package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"browserboot/domain/launch"
)

// PlaywrightLauncher implements Launcher using playwright-go's Chromium.
// The Playwright driver process is started lazily and shared by all sessions.
type PlaywrightLauncher struct {
	config    *DriverConfig
	installer *onceResolver
	logger    *slog.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

// NewPlaywrightLauncher creates a new Playwright-based launcher.
func NewPlaywrightLauncher(config *DriverConfig, logger *slog.Logger) *PlaywrightLauncher {
	if config == nil {
		config = DefaultDriverConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaywrightLauncher{
		config:    config,
		installer: newOnceResolver(installPlaywrightChromium),
		logger:    logger.With("engine", EnginePlaywright),
	}
}

// runOptions keeps Playwright's own output away from the caller's terminal.
func runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

// installPlaywrightChromium downloads the Playwright driver and a matching Chromium.
func installPlaywrightChromium(context.Context) (string, error) {
	if err := playwright.Install(runOptions()); err != nil {
		return "", fmt.Errorf("failed to install playwright: %w", err)
	}
	return "", nil
}

// runtime returns the shared Playwright instance, starting it on first use.
func (l *PlaywrightLauncher) runtime() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw != nil {
		return l.pw, nil
	}

	pw, err := playwright.Run(runOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

func (l *PlaywrightLauncher) launchOptions(profile *launch.Profile) playwright.BrowserTypeLaunchPersistentContextOptions {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(profile.Headless),
		Args:     profile.FlagArgs(),
		// The window size, not an emulated viewport, decides the page size.
		NoViewport: playwright.Bool(true),
	}
	if profile.BinaryPath != "" {
		opts.ExecutablePath = playwright.String(profile.BinaryPath)
	}
	if l.config.WindowWidth > 0 && l.config.WindowHeight > 0 {
		opts.Args = append(opts.Args, fmt.Sprintf("--window-size=%d,%d", l.config.WindowWidth, l.config.WindowHeight))
	}
	if l.config.MuteAudio {
		opts.Args = append(opts.Args, "--mute-audio")
	}
	return opts
}

// Launch starts Chromium with a persistent context on a throwaway user data dir.
func (l *PlaywrightLauncher) Launch(ctx context.Context, profile *launch.Profile) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkBinary(EnginePlaywright, profile); err != nil {
		return nil, err
	}

	if profile.BinaryPath == "" {
		if _, err := l.installer.resolve(ctx); err != nil {
			return nil, driverErr(EnginePlaywright, "resolve browser", err)
		}
	}

	pw, err := l.runtime()
	if err != nil {
		return nil, driverErr(EnginePlaywright, "start driver", err)
	}

	userDataDir, err := newUserDataDir(l.config.ProfileRoot, profile.Prefs)
	if err != nil {
		return nil, driverErr(EnginePlaywright, "prepare profile", err)
	}

	browserCtx, err := pw.Chromium.LaunchPersistentContext(userDataDir, l.launchOptions(profile))
	if err != nil {
		_ = os.RemoveAll(userDataDir)
		return nil, driverErr(EnginePlaywright, "launch", err)
	}

	var page playwright.Page
	if pages := browserCtx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = browserCtx.NewPage(); err != nil {
		_ = browserCtx.Close()
		_ = os.RemoveAll(userDataDir)
		return nil, driverErr(EnginePlaywright, "open page", err)
	}

	l.logger.Debug("Browser launched", "headless", profile.Headless, "binary", profile.BinaryPath)

	return &playwrightSession{
		context:     browserCtx,
		page:        page,
		userDataDir: userDataDir,
	}, nil
}

// Close stops the shared Playwright driver process.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

// playwrightSession implements Session on a persistent browser context.
type playwrightSession struct {
	context     playwright.BrowserContext
	page        playwright.Page
	userDataDir string
	mu          sync.Mutex
	closed      bool
}

func (s *playwrightSession) check(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return driverErr(EnginePlaywright, op, errSessionClosed)
	}
	return nil
}

// SetPageLoadTimeout sets the default navigation timeout of the context.
func (s *playwrightSession) SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error {
	if err := s.check("set page load timeout"); err != nil {
		return err
	}
	if timeout <= 0 {
		return driverErr(EnginePlaywright, "set page load timeout", fmt.Errorf("invalid timeout %s", timeout))
	}

	s.context.SetDefaultNavigationTimeout(float64(timeout.Milliseconds()))
	return nil
}

// DeleteAllCookies clears all cookies of the browser context.
func (s *playwrightSession) DeleteAllCookies(ctx context.Context) error {
	if err := s.check("delete cookies"); err != nil {
		return err
	}
	return driverErr(EnginePlaywright, "delete cookies", s.context.ClearCookies())
}

// Navigate navigates the page to the specified URL.
func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := s.check("navigate"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url)
	return driverErr(EnginePlaywright, "navigate", err)
}

// Maximize maximizes the window through a CDP session, since Playwright
// itself has no window management API.
func (s *playwrightSession) Maximize(ctx context.Context) error {
	if err := s.check("maximize"); err != nil {
		return err
	}

	cdp, err := s.context.NewCDPSession(s.page)
	if err != nil {
		return driverErr(EnginePlaywright, "maximize", err)
	}
	defer func() { _ = cdp.Detach() }()

	result, err := cdp.Send("Browser.getWindowForTarget", nil)
	if err != nil {
		return driverErr(EnginePlaywright, "maximize", err)
	}

	window, ok := result.(map[string]interface{})
	if !ok || window["windowId"] == nil {
		return driverErr(EnginePlaywright, "maximize", fmt.Errorf("unexpected window response %v", result))
	}

	_, err = cdp.Send("Browser.setWindowBounds", map[string]interface{}{
		"windowId": window["windowId"],
		"bounds":   map[string]interface{}{"windowState": "maximized"},
	})
	return driverErr(EnginePlaywright, "maximize", err)
}

// Screenshot captures the visible part of the page as PNG.
func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.check("screenshot"); err != nil {
		return nil, err
	}

	buf, err := s.page.Screenshot()
	if err != nil {
		return nil, driverErr(EnginePlaywright, "screenshot", err)
	}
	return buf, nil
}

// Close closes the browser context and removes its user data dir.
func (s *playwrightSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.context.Close()
	if rmErr := os.RemoveAll(s.userDataDir); err == nil {
		err = rmErr
	}
	return err
}

var (
	_ ManagedLauncher = (*PlaywrightLauncher)(nil)
	_ Session         = (*playwrightSession)(nil)
	_ Screenshotter   = (*playwrightSession)(nil)
)
