package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"browserboot/domain/launch"
)

// SeleniumLauncher implements Launcher over the WebDriver protocol.
// It talks to RemoteURL when configured, otherwise to a local chromedriver
// service that is started on first use and shared by all sessions.
type SeleniumLauncher struct {
	config   *DriverConfig
	resolver *onceResolver
	logger   *slog.Logger

	mu      sync.Mutex
	service *selenium.Service
}

// NewSeleniumLauncher creates a new Selenium-based launcher.
func NewSeleniumLauncher(config *DriverConfig, logger *slog.Logger) *SeleniumLauncher {
	if config == nil {
		config = DefaultDriverConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &SeleniumLauncher{
		config: config,
		logger: logger.With("engine", EngineSelenium),
	}
	l.resolver = newOnceResolver(l.findDriver)
	return l
}

// findDriver locates chromedriver from config or PATH.
func (l *SeleniumLauncher) findDriver(context.Context) (string, error) {
	if l.config.DriverPath != "" {
		return l.config.DriverPath, nil
	}
	return lookPath(exec.LookPath, "chromedriver")
}

// endpoint returns the WebDriver URL prefix, starting the local service if needed.
func (l *SeleniumLauncher) endpoint(ctx context.Context) (string, error) {
	if l.config.RemoteURL != "" {
		return l.config.RemoteURL, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.service == nil {
		path, err := l.resolver.resolve(ctx)
		if err != nil {
			return "", err
		}

		service, err := selenium.NewChromeDriverService(path, l.config.DriverPort)
		if err != nil {
			return "", fmt.Errorf("failed to start chromedriver: %w", err)
		}
		l.service = service
		l.logger.Debug("Chromedriver started", "path", path, "port", l.config.DriverPort)
	}

	return fmt.Sprintf("http://localhost:%d/wd/hub", l.config.DriverPort), nil
}

// capabilities translates a profile into WebDriver capabilities.
func (l *SeleniumLauncher) capabilities(profile *launch.Profile) selenium.Capabilities {
	args := profile.FlagArgs()
	if profile.Headless {
		args = append(args, "--headless=new")
	}
	if l.config.WindowWidth > 0 && l.config.WindowHeight > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", l.config.WindowWidth, l.config.WindowHeight))
	}
	if l.config.MuteAudio {
		args = append(args, "--mute-audio")
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Prefs: profile.Prefs,
		Args:  args,
		Path:  profile.BinaryPath,
		W3C:   true,
	})
	return caps
}

// Launch opens a new WebDriver session.
func (l *SeleniumLauncher) Launch(ctx context.Context, profile *launch.Profile) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkBinary(EngineSelenium, profile); err != nil {
		return nil, err
	}

	urlPrefix, err := l.endpoint(ctx)
	if err != nil {
		return nil, driverErr(EngineSelenium, "resolve driver", err)
	}

	wd, err := selenium.NewRemote(l.capabilities(profile), urlPrefix)
	if err != nil {
		return nil, driverErr(EngineSelenium, "launch", err)
	}

	l.logger.Debug("Browser launched", "url", urlPrefix, "headless", profile.Headless)

	return &seleniumSession{wd: wd}, nil
}

// Close stops the local chromedriver service, if one was started.
func (l *SeleniumLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.service == nil {
		return nil
	}
	err := l.service.Stop()
	l.service = nil
	return err
}

// seleniumSession implements Session on a WebDriver session.
// WebDriver calls are not cancellable; ctx is checked before each call.
type seleniumSession struct {
	wd     selenium.WebDriver
	mu     sync.Mutex
	closed bool
}

func (s *seleniumSession) check(ctx context.Context, op string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return driverErr(EngineSelenium, op, errSessionClosed)
	}
	return ctx.Err()
}

// SetPageLoadTimeout sets the WebDriver page load timeout.
func (s *seleniumSession) SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error {
	if err := s.check(ctx, "set page load timeout"); err != nil {
		return err
	}
	return driverErr(EngineSelenium, "set page load timeout", s.wd.SetPageLoadTimeout(timeout))
}

// DeleteAllCookies deletes all cookies visible to the session.
func (s *seleniumSession) DeleteAllCookies(ctx context.Context) error {
	if err := s.check(ctx, "delete cookies"); err != nil {
		return err
	}
	return driverErr(EngineSelenium, "delete cookies", s.wd.DeleteAllCookies())
}

// Navigate loads the URL in the current window.
func (s *seleniumSession) Navigate(ctx context.Context, url string) error {
	if err := s.check(ctx, "navigate"); err != nil {
		return err
	}
	return driverErr(EngineSelenium, "navigate", s.wd.Get(url))
}

// Maximize maximizes the current window.
func (s *seleniumSession) Maximize(ctx context.Context) error {
	if err := s.check(ctx, "maximize"); err != nil {
		return err
	}
	return driverErr(EngineSelenium, "maximize", s.wd.MaximizeWindow(""))
}

// Screenshot captures the current window as PNG.
func (s *seleniumSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.check(ctx, "screenshot"); err != nil {
		return nil, err
	}

	buf, err := s.wd.Screenshot()
	if err != nil {
		return nil, driverErr(EngineSelenium, "screenshot", err)
	}
	return buf, nil
}

// Close quits the WebDriver session.
func (s *seleniumSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.wd.Quit()
}

var (
	_ ManagedLauncher = (*SeleniumLauncher)(nil)
	_ Session         = (*seleniumSession)(nil)
	_ Screenshotter   = (*seleniumSession)(nil)
)
