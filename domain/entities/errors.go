package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrElementNotFound - no candidate became visible within the timeout
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout - the browser gave up waiting for an element or action
	ErrTimeout = errors.New("timed out")
	// ErrPageClosed - the page, context or browser went away
	ErrPageClosed = errors.New("page closed")
	// ErrStateUnchanged - an action was dispatched but the control did not change
	ErrStateUnchanged = errors.New("state unchanged after action")
	// ErrBlocked - the action guard refused a destructive action
	ErrBlocked = errors.New("destructive action blocked")
	// ErrInvalidPolicy - a wait policy violates timeout > poll interval
	ErrInvalidPolicy = errors.New("invalid wait policy")
	// ErrInvalidAmount - a displayed price could not be parsed
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCheckFailed - a scenario expectation on page state did not hold
	ErrCheckFailed = errors.New("check failed")
)

// ActionError describes a failed action against a target
type ActionError struct {
	Action ActionType
	Target string
	// Step is set when the failure happened inside a composite action.
	Step  string
	Tried []string
	// Hints lists visible elements that look related to the target.
	Hints []string
	Err   error
}

func (e *ActionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", e.Action, e.Target)
	if e.Step != "" {
		fmt.Fprintf(&b, ": step %q", e.Step)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Tried) > 0 {
		fmt.Fprintf(&b, " (tried: %s)", strings.Join(e.Tried, ", "))
	}
	if len(e.Hints) > 0 {
		fmt.Fprintf(&b, "; similar elements: %s", strings.Join(e.Hints, ", "))
	}
	return b.String()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
