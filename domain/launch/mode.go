// Package launch defines browser start-up modes and the launch profiles they resolve to.
package launch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned for mode values outside the supported set.
var ErrUnknownMode = errors.New("unknown launch mode")

// Mode selects one of the supported start-up profiles.
type Mode int

const (
	// ModeStandard runs a visible browser on the local machine.
	ModeStandard Mode = iota
	// ModeCIAgent runs headless on a build agent with an explicitly provided browser binary.
	ModeCIAgent
	// ModeHeadless runs a headless browser on the local machine.
	ModeHeadless
)

// Modes returns all supported modes in declaration order.
func Modes() []Mode {
	return []Mode{ModeStandard, ModeCIAgent, ModeHeadless}
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStandard, ModeCIAgent, ModeHeadless:
		return true
	default:
		return false
	}
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeCIAgent:
		return "ci-agent"
	case ModeHeadless:
		return "headless"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMode converts a textual mode name into a Mode.
// Matching is case-insensitive and accepts the legacy driver names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "chrome", "local":
		return ModeStandard, nil
	case "ci-agent", "ci", "chrome-build", "build":
		return ModeCIAgent, nil
	case "headless", "chrome-headless":
		return ModeHeadless, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
