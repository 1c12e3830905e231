package launch

import (
	"fmt"
	"sync"
)

// Overrides are per-call inputs that complete a profile definition.
type Overrides struct {
	// BinaryPath is used by definitions that require an explicit browser binary.
	BinaryPath string
}

// Registry holds one profile definition per Mode.
type Registry struct {
	profiles map[Mode]*Definition
	mu       sync.RWMutex
}

// NewRegistry creates a new empty profile registry.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[Mode]*Definition),
	}
}

// Register adds a definition to the registry.
// If a definition for the same mode exists, it will be replaced.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[def.Profile.Mode] = def
}

// Get retrieves the definition for a mode.
// Returns nil if not found.
func (r *Registry) Get(mode Mode) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[mode]
}

// Modes returns the registered modes in declaration order.
func (r *Registry) Modes() []Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modes := make([]Mode, 0, len(r.profiles))
	for _, m := range Modes() {
		if _, ok := r.profiles[m]; ok {
			modes = append(modes, m)
		}
	}
	return modes
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Resolve returns a fresh profile for the given mode.
// It has no side effects; the returned profile is owned by the caller.
func (r *Registry) Resolve(mode Mode, o Overrides) (*Profile, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	def := r.Get(mode)
	if def == nil {
		return nil, fmt.Errorf("%w: no profile registered for %s", ErrUnknownMode, mode)
	}

	profile := def.Profile.Clone()
	if def.ExplicitBinary {
		profile.BinaryPath = o.BinaryPath
		profile.RequireBinary = true
	}
	return profile, nil
}

// Definition is a registered profile template.
type Definition struct {
	Profile Profile

	// ExplicitBinary marks modes whose browser binary is supplied by the
	// caller rather than discovered.
	ExplicitBinary bool
}
