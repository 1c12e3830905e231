package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"browserboot/domain/launch"
)

// ChromeDPLauncher implements Launcher using chromedp.
type ChromeDPLauncher struct {
	config   *DriverConfig
	resolver *onceResolver
	logger   *slog.Logger
}

// NewChromeDPLauncher creates a new ChromeDP-based launcher.
func NewChromeDPLauncher(config *DriverConfig, logger *slog.Logger) *ChromeDPLauncher {
	if config == nil {
		config = DefaultDriverConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeDPLauncher{
		config:   config,
		resolver: newOnceResolver(findChrome),
		logger:   logger.With("engine", EngineChromeDP),
	}
}

// buildExecAllocatorOptions builds chromedp options from the profile and launcher config.
func (l *ChromeDPLauncher) buildExecAllocatorOptions(profile *launch.Profile, execPath, userDataDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", profile.Headless),
		chromedp.Flag("hide-scrollbars", l.config.HideScrollbars),
		chromedp.Flag("mute-audio", l.config.MuteAudio),
		chromedp.UserDataDir(userDataDir),
	)

	for _, f := range profile.Flags {
		name, value := launch.SplitFlag(f)
		if value == "" {
			opts = append(opts, chromedp.Flag(name, true))
		} else {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	if l.config.WindowWidth > 0 && l.config.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(l.config.WindowWidth, l.config.WindowHeight))
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	return opts
}

// Launch starts a Chrome process and waits until its first target is attached.
func (l *ChromeDPLauncher) Launch(ctx context.Context, profile *launch.Profile) (Session, error) {
	if err := checkBinary(EngineChromeDP, profile); err != nil {
		return nil, err
	}

	execPath := profile.BinaryPath
	if execPath == "" {
		path, err := l.resolver.resolve(ctx)
		if err != nil {
			return nil, driverErr(EngineChromeDP, "resolve browser", err)
		}
		execPath = path
	}

	userDataDir, err := newUserDataDir(l.config.ProfileRoot, profile.Prefs)
	if err != nil {
		return nil, driverErr(EngineChromeDP, "prepare profile", err)
	}

	// The allocator outlives ctx; only the start-up below is bound to it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		l.buildExecAllocatorOptions(profile, execPath, userDataDir)...,
	)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, cancel)
	err = chromedp.Run(browserCtx)
	stop()

	if err != nil {
		cancel()
		allocCancel()
		_ = os.RemoveAll(userDataDir)
		return nil, driverErr(EngineChromeDP, "launch", err)
	}

	l.logger.Debug("Browser launched", "exec_path", execPath, "headless", profile.Headless)

	return &chromedpSession{
		ctx:             browserCtx,
		cancel:          cancel,
		allocCancel:     allocCancel,
		userDataDir:     userDataDir,
		pageLoadTimeout: 30 * time.Second,
	}, nil
}

// Close releases launcher resources. Browser processes belong to their sessions.
func (l *ChromeDPLauncher) Close() error {
	return nil
}

// chromedpSession implements Session for a chromedp browser context.
type chromedpSession struct {
	ctx             context.Context
	cancel          context.CancelFunc
	allocCancel     context.CancelFunc
	userDataDir     string
	pageLoadTimeout time.Duration
	mu              sync.Mutex
	closed          bool
}

// browserContext returns the chromedp context or an error if the session is closed.
func (s *chromedpSession) browserContext(op string) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, driverErr(EngineChromeDP, op, errSessionClosed)
	}
	return s.ctx, nil
}

// SetPageLoadTimeout sets the deadline applied to each navigation.
func (s *chromedpSession) SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return driverErr(EngineChromeDP, "set page load timeout", fmt.Errorf("invalid timeout %s", timeout))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return driverErr(EngineChromeDP, "set page load timeout", errSessionClosed)
	}
	s.pageLoadTimeout = timeout
	return nil
}

// DeleteAllCookies clears the browser cookie store.
func (s *chromedpSession) DeleteAllCookies(ctx context.Context) error {
	browserCtx, err := s.browserContext("delete cookies")
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return driverErr(EngineChromeDP, "delete cookies", chromedp.Run(runCtx, network.ClearBrowserCookies()))
}

// Navigate navigates to the specified URL within the page load timeout.
func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	browserCtx, err := s.browserContext("navigate")
	if err != nil {
		return err
	}

	s.mu.Lock()
	timeout := s.pageLoadTimeout
	s.mu.Unlock()

	timeoutCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return driverErr(EngineChromeDP, "navigate", chromedp.Run(timeoutCtx, chromedp.Navigate(url)))
}

// Maximize sets the window containing the current target to the maximized state.
func (s *chromedpSession) Maximize(ctx context.Context) error {
	browserCtx, err := s.browserContext("maximize")
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(windowID, &cdpbrowser.Bounds{
			WindowState: cdpbrowser.WindowStateMaximized,
		}).Do(ctx)
	}))
	return driverErr(EngineChromeDP, "maximize", err)
}

// Screenshot captures the visible part of the current page as PNG.
func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	browserCtx, err := s.browserContext("screenshot")
	if err != nil {
		return nil, err
	}

	var buf []byte
	if err := chromedp.Run(browserCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, driverErr(EngineChromeDP, "screenshot", err)
	}
	return buf, nil
}

// Context returns the underlying chromedp context.
// This is useful for advanced operations not covered by the Session interface.
func (s *chromedpSession) Context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Close closes the browser and removes its throwaway profile.
func (s *chromedpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.cancel()
	s.allocCancel()
	return os.RemoveAll(s.userDataDir)
}

var (
	_ ManagedLauncher = (*ChromeDPLauncher)(nil)
	_ Session         = (*chromedpSession)(nil)
	_ Screenshotter   = (*chromedpSession)(nil)
)
