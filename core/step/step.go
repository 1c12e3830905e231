// Package step defines the ordered steps of a single start-up attempt.
package step

import "fmt"

// Step identifies one stage of a start-up attempt.
type Step int

const (
	// Launch starts or connects to the browser process.
	Launch Step = iota
	// PageLoadTimeout applies the page-load timeout policy to the new session.
	PageLoadTimeout
	// ClearCookies deletes all stored cookies.
	ClearCookies
	// Navigate loads the start URL.
	Navigate
	// Maximize maximizes the browser window.
	Maximize
)

// String returns the string representation of the step.
func (s Step) String() string {
	switch s {
	case Launch:
		return "Launch"
	case PageLoadTimeout:
		return "PageLoadTimeout"
	case ClearCookies:
		return "ClearCookies"
	case Navigate:
		return "Navigate"
	case Maximize:
		return "Maximize"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Plan returns the steps of one attempt in execution order.
// ClearCookies is included only when clearCookies is true.
func Plan(clearCookies bool) []Step {
	if clearCookies {
		return []Step{Launch, PageLoadTimeout, ClearCookies, Navigate, Maximize}
	}
	return []Step{Launch, PageLoadTimeout, Navigate, Maximize}
}

// RequiresSession returns true if the step operates on a launched session.
func (s Step) RequiresSession() bool {
	return s != Launch
}
