package engine

import (
	"context"
	"time"
)

// Surface is the slice of browser behavior the fill engine needs. It is
// selector-oriented so the engine never holds page element handles; the
// browser session resolves selectors fresh on every operation.
type Surface interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	HTML() (string, error)
	CurrentURL() string

	// SetValue clears the matched input and types the value into it
	SetValue(selector, value string) error

	// SetFiles attaches local file paths to the matched file input
	SetFiles(selector string, paths []string) error

	// SelectByValue picks the option whose value attribute matches,
	// reporting whether any option matched
	SelectByValue(selector, value string) (bool, error)

	// SelectByText picks the option whose visible text matches
	SelectByText(selector, text string) (bool, error)

	// ScriptClick clicks the matched element via page JS
	ScriptClick(selector string) error

	Close() error
}

// SessionSource produces a fresh Surface per application run
type SessionSource interface {
	NewSession() (Surface, error)
}

// SessionFunc adapts a function to the SessionSource interface
type SessionFunc func() (Surface, error)

// NewSession calls f
func (f SessionFunc) NewSession() (Surface, error) {
	return f()
}
