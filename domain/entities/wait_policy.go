package entities

import (
	"fmt"
	"time"
)

// WaitPolicy bounds a lookup, action or verification
type WaitPolicy struct {
	Timeout      time.Duration `json:"timeout"`
	PollInterval time.Duration `json:"poll_interval"`
}

// Validate checks that the timeout exceeds the poll interval
func (p WaitPolicy) Validate() error {
	if p.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %s", ErrInvalidPolicy, p.PollInterval)
	}
	if p.Timeout <= p.PollInterval {
		return fmt.Errorf("%w: timeout %s must exceed poll interval %s", ErrInvalidPolicy, p.Timeout, p.PollInterval)
	}
	return nil
}

// WithTimeout - returns a copy of the policy with a different timeout
func (p WaitPolicy) WithTimeout(timeout time.Duration) WaitPolicy {
	p.Timeout = timeout
	return p
}

// SettleDelays are fixed pauses that absorb UI timing the page does not
// signal: CSS transitions and input debounce timers.
type SettleDelays struct {
	Animation time.Duration `json:"animation"`
	Debounce  time.Duration `json:"debounce"`
}

const (
	DefaultAnimationSettle = 300 * time.Millisecond
	DefaultDebounceSettle  = 500 * time.Millisecond
)

// DefaultSettleDelays - delays used when nothing is configured
func DefaultSettleDelays() SettleDelays {
	return SettleDelays{
		Animation: DefaultAnimationSettle,
		Debounce:  DefaultDebounceSettle,
	}
}
