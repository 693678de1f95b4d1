package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Predicate reports whether an expected page state holds right now
type Predicate func() (bool, error)

// Verifier checks the observable effect of actions. Checkers never return
// errors: a missing element or a timeout reads as false, "" or 0.
type Verifier struct {
	resolver *Resolver
	logger   logrus.FieldLogger
}

// NewVerifier - creates a state verifier
func NewVerifier(resolver *Resolver, logger logrus.FieldLogger) *Verifier {
	return &Verifier{resolver: resolver, logger: logger}
}

// Poll - evaluates pred until it holds, the policy times out or the page
// fails. Errors other than a closed page count as "not yet"; if the last
// evaluation before the deadline errored, the outcome is Failed.
func (v *Verifier) Poll(ctx context.Context, policy entities.WaitPolicy, pred Predicate) (entities.Outcome, error) {
	return poll(ctx, policy, pred)
}

func poll(ctx context.Context, policy entities.WaitPolicy, pred Predicate) (entities.Outcome, error) {
	if err := policy.Validate(); err != nil {
		return entities.Failed, err
	}
	deadline := time.Now().Add(policy.Timeout)
	for {
		if err := ctx.Err(); err != nil {
			return entities.Failed, err
		}
		ok, err := pred()
		if err == nil && ok {
			return entities.Found, nil
		}
		if err != nil && errors.Is(err, entities.ErrPageClosed) {
			return entities.Failed, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			if err != nil && !errors.Is(err, entities.ErrTimeout) {
				return entities.Failed, err
			}
			return entities.NotFound, nil
		}
		if err := sleepCtx(ctx, min(policy.PollInterval, remaining)); err != nil {
			return entities.Failed, err
		}
	}
}

// Eventually - Poll with the default policy, reduced to a boolean
func (v *Verifier) Eventually(ctx context.Context, pred Predicate) bool {
	outcome, err := v.Poll(ctx, v.resolver.Policy(), pred)
	if err != nil {
		v.logger.Debugf("Condition check failed: %v", err)
	}
	return outcome == entities.Found
}

// Lookup - resolves a visible target and returns the raw tri-state lookup
func (v *Verifier) Lookup(ctx context.Context, scope interfaces.Scope, target entities.Target, timeout time.Duration) Lookup {
	return v.resolver.ResolveWithin(ctx, scope, target, v.policy(timeout))
}

// IsVisible - reports whether the target becomes visible within the default timeout
func (v *Verifier) IsVisible(ctx context.Context, scope interfaces.Scope, target entities.Target) bool {
	return v.IsVisibleWithin(ctx, scope, target, 0)
}

// IsVisibleWithin - reports whether the target becomes visible within timeout
func (v *Verifier) IsVisibleWithin(ctx context.Context, scope interfaces.Scope, target entities.Target, timeout time.Duration) bool {
	lookup := v.Lookup(ctx, scope, target, timeout)
	if lookup.Outcome == entities.Failed {
		v.logger.WithField("target", target.Name).Debugf("Visibility check failed: %v", lookup.Err)
	}
	return lookup.Found()
}

// IsHidden - reports whether no candidate of the target is visible, waiting
// up to timeout for it to go away
func (v *Verifier) IsHidden(ctx context.Context, scope interfaces.Scope, target entities.Target, timeout time.Duration) bool {
	outcome, _ := v.Poll(ctx, v.policy(timeout), func() (bool, error) {
		lookup := v.resolver.attempt(scope, target, visibleMatch)
		if lookup.Outcome == entities.Failed {
			return false, lookup.Err
		}
		return !lookup.Found(), nil
	})
	return outcome == entities.Found
}

// FirstVisible - waits until one of the targets is visible and returns its
// index. Used for "rows or empty state" checks.
func (v *Verifier) FirstVisible(ctx context.Context, scope interfaces.Scope, timeout time.Duration, targets ...entities.Target) (int, bool) {
	index := -1
	outcome, _ := v.Poll(ctx, v.policy(timeout), func() (bool, error) {
		for i, t := range targets {
			lookup := v.resolver.attempt(scope, t, visibleMatch)
			if lookup.Outcome == entities.Failed {
				return false, lookup.Err
			}
			if lookup.Found() {
				index = i
				return true, nil
			}
		}
		return false, nil
	})
	if outcome != entities.Found {
		return -1, false
	}
	return index, true
}

// Text - returns the trimmed text of the target, or "" if it never shows up
func (v *Verifier) Text(ctx context.Context, scope interfaces.Scope, target entities.Target) string {
	return v.TextWithin(ctx, scope, target, 0)
}

// TextWithin - Text with an explicit timeout, for optional elements such as
// toasts and inline errors
func (v *Verifier) TextWithin(ctx context.Context, scope interfaces.Scope, target entities.Target, timeout time.Duration) string {
	lookup := v.Lookup(ctx, scope, target, timeout)
	if !lookup.Found() {
		return ""
	}
	text, err := lookup.Element.Text()
	if err != nil {
		v.logger.WithField("target", target.Name).Debugf("Failed to read text: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// TextContains - waits until the target text contains want
func (v *Verifier) TextContains(ctx context.Context, scope interfaces.Scope, target entities.Target, want string) bool {
	return v.textMatches(ctx, scope, target, func(text string) bool {
		return strings.Contains(text, want)
	})
}

// TextEquals - waits until the trimmed target text equals want
func (v *Verifier) TextEquals(ctx context.Context, scope interfaces.Scope, target entities.Target, want string) bool {
	return v.textMatches(ctx, scope, target, func(text string) bool {
		return text == want
	})
}

func (v *Verifier) textMatches(ctx context.Context, scope interfaces.Scope, target entities.Target, match func(string) bool) bool {
	return v.Eventually(ctx, func() (bool, error) {
		lookup := v.resolver.attempt(scope, target, visibleMatch)
		if !lookup.Found() {
			return false, lookup.Err
		}
		text, err := lookup.Element.Text()
		if err != nil {
			return false, err
		}
		return match(strings.TrimSpace(text)), nil
	})
}

// Value - returns the current value of an input or select, or ""
func (v *Verifier) Value(ctx context.Context, scope interfaces.Scope, target entities.Target) string {
	lookup := v.resolver.ResolveAttached(ctx, scope, target)
	if !lookup.Found() {
		return ""
	}
	value, err := lookup.Element.InputValue()
	if err != nil {
		v.logger.WithField("target", target.Name).Debugf("Failed to read value: %v", err)
		return ""
	}
	return value
}

// Count - waits for at least one match of any candidate and returns how
// many nodes the first matching candidate has; 0 on timeout
func (v *Verifier) Count(ctx context.Context, scope interfaces.Scope, target entities.Target) int {
	return v.CountWithin(ctx, scope, target, 0)
}

// CountWithin - Count with an explicit timeout
func (v *Verifier) CountWithin(ctx context.Context, scope interfaces.Scope, target entities.Target, timeout time.Duration) int {
	count := 0
	v.Poll(ctx, v.policy(timeout), func() (bool, error) {
		var lastErr error
		for _, c := range target.Candidates {
			n, err := countOf(scope, c)
			if err != nil {
				if errors.Is(err, entities.ErrPageClosed) {
					return false, err
				}
				lastErr = err
				continue
			}
			if n > 0 {
				count = n
				return true, nil
			}
		}
		return false, lastErr
	})
	return count
}

// CountEquals - waits until Count matches want
func (v *Verifier) CountEquals(ctx context.Context, scope interfaces.Scope, target entities.Target, want int) bool {
	return v.Eventually(ctx, func() (bool, error) {
		var lastErr error
		for _, c := range target.Candidates {
			n, err := countOf(scope, c)
			if err != nil {
				if errors.Is(err, entities.ErrPageClosed) {
					return false, err
				}
				lastErr = err
				continue
			}
			if n > 0 || want == 0 {
				return n == want, nil
			}
		}
		return false, lastErr
	})
}

// countOf counts the matches of one candidate; a positional candidate
// matches at most its indexed node
func countOf(scope interfaces.Scope, c entities.Strategy) (int, error) {
	if c.Positional() {
		return handle(scope, c).Count()
	}
	return scope.Locate(c).Count()
}

// RecordTotal - reads a pagination summary such as "Showing 1 to 20 of
// 13,056 records" and returns the total; 0 when missing or unparseable
func (v *Verifier) RecordTotal(ctx context.Context, scope interfaces.Scope, target entities.Target) int {
	return ParseRecordTotal(v.Text(ctx, scope, target))
}

// CountValue - reads a displayed count; 0 when missing or unparseable
func (v *Verifier) CountValue(ctx context.Context, scope interfaces.Scope, target entities.Target) int {
	return ParseCount(v.Text(ctx, scope, target))
}

// Amount - reads a displayed price. Unlike counts, a missing or invalid
// amount is an error.
func (v *Verifier) Amount(ctx context.Context, scope interfaces.Scope, target entities.Target) (float64, error) {
	lookup := v.Lookup(ctx, scope, target, 0)
	if !lookup.Found() {
		return 0, fmt.Errorf("amount %q: %w", target.Name, entities.ErrElementNotFound)
	}
	text, err := lookup.Element.Text()
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", target.Name, err)
	}
	amount, err := ParseAmount(text)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", target.Name, err)
	}
	return amount, nil
}

// policy returns the default policy, or one with a different timeout
func (v *Verifier) policy(timeout time.Duration) entities.WaitPolicy {
	p := v.resolver.Policy()
	if timeout > 0 {
		p = p.WithTimeout(timeout)
		if p.Timeout <= p.PollInterval {
			p.PollInterval = p.Timeout / 2
		}
	}
	return p
}
