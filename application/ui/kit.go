package ui

import (
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Options configures the resolver, executor and verifier together
type Options struct {
	Lookup        entities.WaitPolicy
	ActionTimeout time.Duration
	Settle        entities.SettleDelays
}

// Kit bundles the three stages used for every logical UI operation
type Kit struct {
	Resolver *Resolver
	Executor *Executor
	Verifier *Verifier
	Settle   entities.SettleDelays
}

// NewKit - wires a resolver, executor and verifier sharing one wait policy
func NewKit(logger logrus.FieldLogger, guard interfaces.ActionGuard, opts Options) (*Kit, error) {
	resolver, err := NewResolver(logger, opts.Lookup)
	if err != nil {
		return nil, err
	}
	return &Kit{
		Resolver: resolver,
		Executor: NewExecutor(resolver, guard, logger, ExecutorOptions{
			ActionTimeout: opts.ActionTimeout,
			Settle:        opts.Settle,
		}),
		Verifier: NewVerifier(resolver, logger),
		Settle:   opts.Settle,
	}, nil
}

// On binds the kit to a page
func (k *Kit) On(page interfaces.Page) *Driver {
	return &Driver{Kit: k, Page: page}
}

// Driver is a Kit bound to the page a page object works on
type Driver struct {
	*Kit
	Page interfaces.Page
}
