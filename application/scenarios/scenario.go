// Package scenarios holds the named end-to-end flows the CLI can run and
// the runner that drives them step by step.
package scenarios

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/fixtures"
)

const (
	PortalAdmin    = "admin"
	PortalCustomer = "customer"
)

// ErrSkipped is returned by a step that has nothing to do in the current
// configuration. The step is recorded as skipped, not failed.
var ErrSkipped = errors.New("step skipped")

// Params are the portal specific values scenarios filter and type with
type Params struct {
	Server            string
	Interval          string
	DashboardInterval string
	Category          string
}

// Limits mirror the upload restrictions the customer portal enforces
type Limits struct {
	MaxFiles int
	MaxBytes int64
}

// Env is what a step gets to work with
type Env struct {
	Driver   *ui.Driver
	Session  interfaces.Session
	Portal   config.Portal
	Params   Params
	Limits   Limits
	Fixtures *fixtures.Set
}

// Step is one named unit of a scenario
type Step struct {
	Name string
	// Optional steps are recorded as skipped when they fail and do not
	// stop the scenario.
	Optional bool
	Run      func(ctx context.Context, env *Env) error
}

// Scenario is an ordered list of steps against one portal
type Scenario struct {
	Name        string
	Portal      string
	Description string
	Steps       []Step
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", entities.ErrCheckFailed, fmt.Sprintf(format, args...))
}

func expectEqual(what string, want, got any) error {
	return expect(reflect.DeepEqual(want, got), "%s: want %v, got %v", what, want, got)
}
