package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Lookup is the result of resolving a target
type Lookup struct {
	Outcome  entities.Outcome
	Element  interfaces.Element
	Strategy entities.Strategy
	Tried    []string
	Err      error
}

// Found reports whether the lookup produced an element
func (l Lookup) Found() bool {
	return l.Outcome == entities.Found
}

// matcher decides whether a candidate handle currently qualifies
type matcher func(el interfaces.Element) (bool, error)

func visibleMatch(el interfaces.Element) (bool, error) {
	return el.IsVisible()
}

func attachedMatch(el interfaces.Element) (bool, error) {
	n, err := el.Count()
	return n > 0, err
}

// Resolver maps a Target to the first candidate that currently matches
type Resolver struct {
	logger logrus.FieldLogger
	policy entities.WaitPolicy
}

// NewResolver - creates a resolver with a default wait policy
func NewResolver(logger logrus.FieldLogger, policy entities.WaitPolicy) (*Resolver, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{logger: logger, policy: policy}, nil
}

// Policy returns the default wait policy
func (r *Resolver) Policy() entities.WaitPolicy {
	return r.policy
}

// Resolve - waits for the first visible candidate using the default policy
func (r *Resolver) Resolve(ctx context.Context, scope interfaces.Scope, target entities.Target) Lookup {
	return r.resolve(ctx, scope, target, r.policy, visibleMatch)
}

// ResolveWithin - waits for the first visible candidate using policy
func (r *Resolver) ResolveWithin(ctx context.Context, scope interfaces.Scope, target entities.Target, policy entities.WaitPolicy) Lookup {
	return r.resolve(ctx, scope, target, policy, visibleMatch)
}

// ResolveAttached - waits for the first candidate present in the DOM,
// visible or not. Hidden native inputs behind custom widgets need this.
func (r *Resolver) ResolveAttached(ctx context.Context, scope interfaces.Scope, target entities.Target) Lookup {
	return r.resolve(ctx, scope, target, r.policy, attachedMatch)
}

// handle narrows the lazy match set of a candidate to a single node
func handle(scope interfaces.Scope, s entities.Strategy) interfaces.Element {
	el := scope.Locate(s)
	if s.Positional() {
		return el.Nth(s.Index)
	}
	return el.First()
}

// attempt checks every candidate once, in order. A NotFound result carries
// the last non-timeout error seen, if any.
func (r *Resolver) attempt(scope interfaces.Scope, target entities.Target, p matcher) Lookup {
	var lastErr error
	for _, c := range target.Candidates {
		el := handle(scope, c)
		ok, err := p(el)
		if err != nil {
			if errors.Is(err, entities.ErrPageClosed) {
				return Lookup{Outcome: entities.Failed, Err: err}
			}
			if !errors.Is(err, entities.ErrTimeout) {
				lastErr = fmt.Errorf("%s: %w", c, err)
			}
			continue
		}
		if ok {
			return Lookup{Outcome: entities.Found, Element: el, Strategy: c}
		}
	}
	return Lookup{Outcome: entities.NotFound, Err: lastErr}
}

func (r *Resolver) resolve(ctx context.Context, scope interfaces.Scope, target entities.Target, policy entities.WaitPolicy, p matcher) Lookup {
	tried := target.Selectors()
	failed := func(err error) Lookup {
		return Lookup{Outcome: entities.Failed, Tried: tried, Err: err}
	}

	if len(target.Candidates) == 0 {
		return failed(fmt.Errorf("target %q has no candidate selectors", target.Name))
	}
	if err := policy.Validate(); err != nil {
		return failed(err)
	}

	deadline := time.Now().Add(policy.Timeout)
	for {
		if err := ctx.Err(); err != nil {
			return failed(err)
		}
		found := r.attempt(scope, target, p)
		if found.Outcome == entities.Failed {
			return failed(found.Err)
		}
		if found.Found() {
			found.Tried = tried
			fields := logrus.Fields{"target": target.Name, "strategy": found.Strategy.String()}
			if found.Strategy.Positional() {
				r.logger.WithFields(fields).Warn("Resolved by position; field order on the page is not guaranteed")
			} else {
				r.logger.WithFields(fields).Debug("Resolved target")
			}
			return found
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			if found.Err != nil {
				return failed(found.Err)
			}
			return Lookup{Outcome: entities.NotFound, Tried: tried}
		}
		if err := sleepCtx(ctx, min(policy.PollInterval, remaining)); err != nil {
			return failed(err)
		}
	}
}

// sleepCtx - sleeps for d or until the context is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
