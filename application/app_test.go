package application

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"browserboot/application/bootstrap"
	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
	"browserboot/infrastructure/config"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestNew(t *testing.T) {
	settings := config.Default()
	settings.MaxAttempts = 4

	app, err := New(context.Background(), &Config{
		Settings: settings,
		Lookup:   envLookup(map[string]string{"ChromeWebDriver": "path/to/bin"}),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer app.Close(context.Background())

	if app.Profiles().Count() != len(launch.Modes()) {
		t.Errorf("Profiles().Count() = %d, want %d", app.Profiles().Count(), len(launch.Modes()))
	}
	if app.bootstrapper.MaxAttempts() != 4 {
		t.Errorf("MaxAttempts() = %d, want 4", app.bootstrapper.MaxAttempts())
	}
	if app.HistoryService() != nil {
		t.Error("history service created while disabled")
	}

	profile, err := app.ResolveProfile(launch.ModeCIAgent)
	if err != nil {
		t.Fatalf("ResolveProfile() returned error: %v", err)
	}
	if profile.BinaryPath != "path/to/bin" {
		t.Errorf("BinaryPath = %q, want path/to/bin", profile.BinaryPath)
	}
}

// recordingLauncher hands out no-op sessions and keeps every profile it receives.
type recordingLauncher struct {
	mu       sync.Mutex
	profiles []*launch.Profile
	closed   bool
}

func (l *recordingLauncher) Launch(_ context.Context, profile *launch.Profile) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profiles = append(l.profiles, profile)
	return nopSession{}, nil
}

func (l *recordingLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

type nopSession struct{}

func (nopSession) SetPageLoadTimeout(context.Context, time.Duration) error { return nil }
func (nopSession) DeleteAllCookies(context.Context) error                  { return nil }
func (nopSession) Navigate(context.Context, string) error                  { return nil }
func (nopSession) Maximize(context.Context) error                          { return nil }
func (nopSession) Close() error                                            { return nil }

func TestApp_BootstrapPassesCIBinaryToLauncher(t *testing.T) {
	settings := config.Default()
	settings.CIBinaryEnv = "X"
	l := &recordingLauncher{}

	app, err := New(context.Background(), &Config{
		Settings: settings,
		Lookup:   envLookup(map[string]string{"X": "path/to/bin"}),
		Launcher: l,
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	endpoint := &url.URL{Scheme: "https", Host: "example.test", Path: "/login"}
	session, err := app.Bootstrap(context.Background(), endpoint, launch.ModeCIAgent)
	if err != nil {
		t.Fatalf("Bootstrap() returned error: %v", err)
	}
	_ = session.Close()

	if err := app.Close(context.Background()); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	if len(l.profiles) != 1 {
		t.Fatalf("Launch called %d times, want 1", len(l.profiles))
	}
	if got := l.profiles[0].BinaryPath; got != "path/to/bin" {
		t.Errorf("BinaryPath = %q, want path/to/bin", got)
	}
	if !l.closed {
		t.Error("App.Close() did not close the injected launcher")
	}
}

func TestNew_UnknownEngine(t *testing.T) {
	settings := config.Default()
	settings.Engine = "lynx"

	_, err := New(context.Background(), &Config{Settings: settings, Lookup: envLookup(nil)})
	if !errors.Is(err, browser.ErrUnknownEngine) {
		t.Errorf("New() error = %v, want ErrUnknownEngine", err)
	}
}

func TestApp_BootstrapRejectsInvalidMode(t *testing.T) {
	app, err := New(context.Background(), &Config{Lookup: envLookup(nil)})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer app.Close(context.Background())

	endpoint := &url.URL{Scheme: "https", Host: "example.test"}
	if _, err := app.Bootstrap(context.Background(), endpoint, launch.Mode(99)); !errors.Is(err, bootstrap.ErrInvalidConfiguration) {
		t.Errorf("Bootstrap() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestLoadProfiles_Dir(t *testing.T) {
	dir := t.TempDir()
	data := []byte("profiles:\n  - mode: headless\n    headless: true\n    flags: [disable-gpu]\n")
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadProfiles(dir)
	if err != nil {
		t.Fatalf("LoadProfiles() returned error: %v", err)
	}
	if registry.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", registry.Count())
	}
	if def := registry.Get(launch.ModeHeadless); def == nil || !def.Profile.HasFlag("disable-gpu") {
		t.Errorf("Get(ModeHeadless) = %+v", def)
	}
}

func TestLoadProfiles_MissingDir(t *testing.T) {
	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadProfiles() accepted a missing directory")
	}
}
