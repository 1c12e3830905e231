package launch

import (
	"sort"
	"strings"
)

// Profile is the resolved browser configuration for a Mode.
// Profiles returned by a Registry are independent copies; callers may not
// rely on mutations being visible elsewhere.
type Profile struct {
	// Mode is the mode this profile was resolved from.
	Mode Mode

	// Prefs are browser user-profile preferences keyed by dotted name,
	// e.g. "download.prompt_for_download".
	Prefs map[string]any

	// Flags are command-line switches without the leading dashes.
	// A flag may carry a value as "name=value".
	Flags []string

	// Headless requests a headless rendering surface.
	Headless bool

	// StartMaximized requests a maximized window at start.
	StartMaximized bool

	// BinaryPath is an explicit browser binary. Empty means auto-discovery.
	BinaryPath string

	// RequireBinary is set for modes whose binary must not be discovered.
	// Launchers fail when it is set and BinaryPath is empty.
	RequireBinary bool
}

// Clone creates a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	clone := &Profile{
		Mode:           p.Mode,
		Headless:       p.Headless,
		StartMaximized: p.StartMaximized,
		BinaryPath:     p.BinaryPath,
		RequireBinary:  p.RequireBinary,
	}

	if p.Prefs != nil {
		clone.Prefs = ClonePrefs(p.Prefs)
	}

	if len(p.Flags) > 0 {
		clone.Flags = make([]string, len(p.Flags))
		copy(clone.Flags, p.Flags)
	}

	return clone
}

// ClonePrefs copies prefs, including nested maps and lists decoded from YAML.
func ClonePrefs(prefs map[string]any) map[string]any {
	if prefs == nil {
		return nil
	}
	out := make(map[string]any, len(prefs))
	for k, v := range prefs {
		out[k] = clonePrefValue(v)
	}
	return out
}

func clonePrefValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return ClonePrefs(v)
	case map[any]any:
		out := make(map[any]any, len(v))
		for k, e := range v {
			out[k] = clonePrefValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = clonePrefValue(e)
		}
		return out
	default:
		return v
	}
}

// HasFlag reports whether the profile carries the named switch.
func (p *Profile) HasFlag(name string) bool {
	name = normalizeFlag(name)
	for _, f := range p.Flags {
		if n, _ := SplitFlag(f); n == name {
			return true
		}
	}
	return false
}

// FlagArgs renders the flags as command-line arguments ("--name" or "--name=value").
func (p *Profile) FlagArgs() []string {
	args := make([]string, 0, len(p.Flags))
	for _, f := range p.Flags {
		args = append(args, "--"+f)
	}
	return args
}

// PrefKeys returns the preference names in sorted order.
func (p *Profile) PrefKeys() []string {
	keys := make([]string, 0, len(p.Prefs))
	for k := range p.Prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitFlag splits "name=value" into its parts. The value is empty for bare switches.
func SplitFlag(flag string) (name, value string) {
	name, value, _ = strings.Cut(flag, "=")
	return name, value
}

// normalizeFlag strips leading dashes and surrounding whitespace.
func normalizeFlag(flag string) string {
	return strings.TrimLeft(strings.TrimSpace(flag), "-")
}
