package bootstrap

import (
	"context"
	"errors"
	"sync"
	"time"

	"browserboot/domain/launch"
	"browserboot/infrastructure/browser"
)

// fakeLauncher records every call made by the Bootstrapper. Failures are
// configured per launch number (1-based) and step name.
type fakeLauncher struct {
	mu sync.Mutex

	launchErrs map[int]error
	stepErrs   map[int]map[string]error

	launches     int
	profiles     []*launch.Profile
	timeouts     []time.Duration
	cookieClears int
	navigations  []string
	maximizes    int
	closes       int
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		launchErrs: make(map[int]error),
		stepErrs:   make(map[int]map[string]error),
	}
}

func (l *fakeLauncher) failStep(launchNo int, name string, err error) {
	if l.stepErrs[launchNo] == nil {
		l.stepErrs[launchNo] = make(map[string]error)
	}
	l.stepErrs[launchNo][name] = err
}

func (l *fakeLauncher) Launch(ctx context.Context, profile *launch.Profile) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.launches++
	l.profiles = append(l.profiles, profile)

	if err := l.launchErrs[l.launches]; err != nil {
		return nil, err
	}
	if profile.RequireBinary && profile.BinaryPath == "" {
		return nil, driverFailure("browser binary path required")
	}
	return &fakeSession{launcher: l, errs: l.stepErrs[l.launches]}, nil
}

type fakeSession struct {
	launcher *fakeLauncher
	errs     map[string]error
}

func (s *fakeSession) record(name string, fn func(l *fakeLauncher)) error {
	s.launcher.mu.Lock()
	defer s.launcher.mu.Unlock()
	fn(s.launcher)
	return s.errs[name]
}

func (s *fakeSession) SetPageLoadTimeout(ctx context.Context, timeout time.Duration) error {
	return s.record("timeout", func(l *fakeLauncher) { l.timeouts = append(l.timeouts, timeout) })
}

func (s *fakeSession) DeleteAllCookies(ctx context.Context) error {
	return s.record("cookies", func(l *fakeLauncher) { l.cookieClears++ })
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	return s.record("navigate", func(l *fakeLauncher) { l.navigations = append(l.navigations, url) })
}

func (s *fakeSession) Maximize(ctx context.Context) error {
	return s.record("maximize", func(l *fakeLauncher) { l.maximizes++ })
}

func (s *fakeSession) Close() error {
	return s.record("close", func(l *fakeLauncher) { l.closes++ })
}

func driverFailure(msg string) error {
	return &browser.DriverError{Engine: "fake", Op: "launch", Err: errors.New(msg)}
}
