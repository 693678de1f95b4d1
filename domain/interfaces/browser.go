package interfaces

import (
	"context"
	"time"

	"portal_automation/domain/entities"
)

// Scope is anything elements can be looked up in: a page or a container element
type Scope interface {
	// Locate returns a lazy handle for every node matching the strategy
	Locate(s entities.Strategy) Element
}

// Element is a lazy handle to zero or more DOM nodes. Nothing is queried
// until a method other than Locate, First or Nth is called, so a handle
// always reflects the current DOM.
type Element interface {
	Scope

	// First narrows the handle to the first match in document order
	First() Element

	// Nth narrows the handle to the n-th match (zero based)
	Nth(n int) Element

	// Count returns the number of matching nodes
	Count() (int, error)

	// IsVisible checks visibility without waiting
	IsVisible() (bool, error)

	// IsEnabled checks whether the element accepts input
	IsEnabled() (bool, error)

	// IsChecked returns the checked state of a checkbox or radio
	IsChecked() (bool, error)

	// ScrollIntoView scrolls the element into the viewport
	ScrollIntoView(timeout time.Duration) error

	// Click clicks the element
	Click(timeout time.Duration) error

	// Fill replaces the value of an input or textarea
	Fill(value string, timeout time.Duration) error

	// SelectOption selects an option of a native select by value or label
	SelectOption(value string, timeout time.Duration) error

	// SetInputFiles attaches files to a file input
	SetInputFiles(paths []string, timeout time.Duration) error

	// Text returns the rendered text of the element
	Text() (string, error)

	// InputValue returns the current value of an input, textarea or select
	InputValue() (string, error)

	// Describe returns the selector chain for logs and errors
	Describe() string
}

// Page is the page under test
type Page interface {
	Scope

	// Navigate loads url and waits for the network to settle
	Navigate(ctx context.Context, url string) error

	// PressKey sends a key to the focused element
	PressKey(ctx context.Context, key string) error

	// WaitForIdle waits for network idle, treating a timeout as settled
	WaitForIdle(timeout time.Duration)

	// Info returns the current URL and title
	Info() (entities.PageInfo, error)

	// InteractiveElements reports visible interactive elements for diagnostics
	InteractiveElements(ctx context.Context) ([]entities.PageElement, error)

	// Screenshot writes a full page screenshot to path
	Screenshot(path string) error

	// Close closes the page
	Close() error
}

// Session is one isolated browser context with its active page
type Session interface {
	// Page returns the page the session started with
	Page() Page

	// ExpectNewPage registers a listener for a new page, then runs trigger,
	// then waits up to timeout for the page. The listener is always in place
	// before trigger runs so a page created immediately is not missed.
	ExpectNewPage(ctx context.Context, timeout time.Duration, trigger func() error) (Page, error)

	// SaveState writes cookies and local storage to path
	SaveState(path string) error

	// Close closes the context and every page in it
	Close() error
}

// SessionOptions configures a new session
type SessionOptions struct {
	BaseURL string
	// StatePath, when set and present on disk, restores a saved login.
	StatePath string
}

// Launcher owns the browser process and hands out isolated sessions
type Launcher interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
	Close() error
}
