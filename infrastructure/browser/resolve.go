package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"browserboot/domain/launch"
)

var (
	// ErrBinaryNotFound is returned when no candidate binary could be located.
	ErrBinaryNotFound = errors.New("binary not found")

	// ErrBinaryRequired is returned when a profile needs an explicit binary path and has none.
	ErrBinaryRequired = errors.New("browser binary path required")
)

// chromeCandidates are the executable names tried when looking for Chrome.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// onceResolver runs a resolution function until it succeeds once and caches
// that result. Launchers use it so driver binaries are resolved once per
// process, not per attempt. Failures are not cached, so a later call retries.
type onceResolver struct {
	mu   sync.Mutex
	fn   func(ctx context.Context) (string, error)
	path string
	done bool
}

func newOnceResolver(fn func(ctx context.Context) (string, error)) *onceResolver {
	return &onceResolver{fn: fn}
}

// resolve returns the cached path, running the resolution if none succeeded yet.
func (r *onceResolver) resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return r.path, nil
	}

	path, err := r.fn(ctx)
	if err != nil {
		return "", err
	}
	r.path, r.done = path, true
	return path, nil
}

// checkBinary fails when profile requires an explicit binary that was not supplied.
func checkBinary(engine string, profile *launch.Profile) error {
	if profile.RequireBinary && profile.BinaryPath == "" {
		return driverErr(engine, "resolve browser", fmt.Errorf("%w for mode %s", ErrBinaryRequired, profile.Mode))
	}
	return nil
}

// lookPath returns the first candidate found on PATH.
func lookPath(lookup func(string) (string, error), candidates ...string) (string, error) {
	for _, name := range candidates {
		if path, err := lookup(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrBinaryNotFound, candidates)
}

// findChrome locates a Chrome or Chromium executable on PATH.
func findChrome(context.Context) (string, error) {
	return lookPath(exec.LookPath, chromeCandidates...)
}
