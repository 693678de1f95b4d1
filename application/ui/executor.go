package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const maxHints = 5

// Dropdown is a custom select: a toggle that opens an overlay panel holding
// the options
type Dropdown struct {
	Name   string
	Toggle entities.Target
	Panel  entities.Target
	// Option builds the target of one option inside the panel.
	Option func(label string) entities.Target
}

// OptionTarget - default candidates for an option inside a dropdown panel
func OptionTarget(label string) entities.Target {
	return entities.NewTarget("option "+label,
		entities.Role("option", label),
		entities.CSS(fmt.Sprintf("li:text-is(%q)", label)),
		entities.ExactText(label),
		entities.Text(label),
	)
}

// Checkbox is a checkbox widget. Input is the native input, often visually
// hidden; Label is the clickable element wrapping or labelling it.
type Checkbox struct {
	Name  string
	Input entities.Target
	Label entities.Target
}

// Step is one named stage of a composite action
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// ExecutorOptions tunes action timing
type ExecutorOptions struct {
	ActionTimeout time.Duration
	Settle        entities.SettleDelays
}

// Executor performs user-facing actions against resolved elements
type Executor struct {
	resolver *Resolver
	guard    interfaces.ActionGuard
	logger   logrus.FieldLogger
	opts     ExecutorOptions
}

// NewExecutor - creates an action executor. guard may be nil.
func NewExecutor(resolver *Resolver, guard interfaces.ActionGuard, logger logrus.FieldLogger, opts ExecutorOptions) *Executor {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 10 * time.Second
	}
	return &Executor{
		resolver: resolver,
		guard:    guard,
		logger:   logger,
		opts:     opts,
	}
}

// Resolver returns the resolver the executor looks targets up with
func (e *Executor) Resolver() *Resolver {
	return e.resolver
}

// Click - clicks a target, retrying once on a transient failure
func (e *Executor) Click(ctx context.Context, scope interfaces.Scope, target entities.Target) error {
	_, err := e.click(ctx, scope, target)
	return err
}

// Fill - replaces the value of a text input
func (e *Executor) Fill(ctx context.Context, scope interfaces.Scope, target entities.Target, value string) error {
	_, err := e.fill(ctx, scope, target, value)
	return err
}

// SelectNative - selects an option of a native select element
func (e *Executor) SelectNative(ctx context.Context, scope interfaces.Scope, target entities.Target, value string) error {
	_, err := e.selectNative(ctx, scope, target, value)
	return err
}

// Upload - attaches files to a file input
func (e *Executor) Upload(ctx context.Context, scope interfaces.Scope, target entities.Target, files ...string) error {
	_, err := e.upload(ctx, scope, target, files)
	return err
}

// PressKey - sends a key such as Escape or Enter to the page
func (e *Executor) PressKey(ctx context.Context, page interfaces.Page, key string) error {
	e.logger.WithFields(logrus.Fields{"action": entities.ActionPress, "key": key}).Debug("Pressing key")
	if err := page.PressKey(ctx, key); err != nil {
		return &entities.ActionError{Action: entities.ActionPress, Target: key, Err: err}
	}
	return nil
}

func (e *Executor) click(ctx context.Context, scope interfaces.Scope, target entities.Target) (entities.Strategy, error) {
	if err := e.allow(ctx, entities.Action{Type: entities.ActionClick, Target: target}); err != nil {
		return entities.Strategy{}, err
	}
	e.logger.WithFields(logrus.Fields{"action": entities.ActionClick, "target": target.Name}).Info("Clicking")

	lookup, err := e.resolveFor(ctx, scope, entities.ActionClick, target)
	if err != nil {
		return entities.Strategy{}, err
	}

	err = e.clickElement(lookup.Element)
	if err != nil && errors.Is(err, entities.ErrTimeout) {
		// The node may have been re-rendered between lookup and click.
		e.logger.WithFields(logrus.Fields{"target": target.Name, "error": err}).Warn("Click failed, retrying once")
		lookup, err = e.resolveFor(ctx, scope, entities.ActionClick, target)
		if err != nil {
			return entities.Strategy{}, err
		}
		err = e.clickElement(lookup.Element)
	}
	if err != nil {
		return lookup.Strategy, &entities.ActionError{
			Action: entities.ActionClick,
			Target: target.Name,
			Tried:  []string{lookup.Strategy.String()},
			Err:    err,
		}
	}

	return lookup.Strategy, sleepCtx(ctx, e.opts.Settle.Animation)
}

// clickElement scrolls the element into view and clicks it
func (e *Executor) clickElement(el interfaces.Element) error {
	e.scrollTo(el)
	return el.Click(e.opts.ActionTimeout)
}

func (e *Executor) scrollTo(el interfaces.Element) {
	if err := el.ScrollIntoView(e.opts.ActionTimeout); err != nil {
		e.logger.Debugf("Failed to scroll %s into view: %v", el.Describe(), err)
	}
}

func (e *Executor) fill(ctx context.Context, scope interfaces.Scope, target entities.Target, value string) (entities.Strategy, error) {
	if err := e.allow(ctx, entities.Action{Type: entities.ActionFill, Target: target, Value: value}); err != nil {
		return entities.Strategy{}, err
	}
	e.logger.WithFields(logrus.Fields{"action": entities.ActionFill, "target": target.Name}).Info("Filling")

	lookup, err := e.resolveFor(ctx, scope, entities.ActionFill, target)
	if err != nil {
		return entities.Strategy{}, err
	}
	e.scrollTo(lookup.Element)
	if err := lookup.Element.Fill(value, e.opts.ActionTimeout); err != nil {
		return lookup.Strategy, &entities.ActionError{Action: entities.ActionFill, Target: target.Name, Tried: []string{lookup.Strategy.String()}, Err: err}
	}
	return lookup.Strategy, sleepCtx(ctx, e.opts.Settle.Debounce)
}

func (e *Executor) selectNative(ctx context.Context, scope interfaces.Scope, target entities.Target, value string) (entities.Strategy, error) {
	if err := e.allow(ctx, entities.Action{Type: entities.ActionSelect, Target: target, Value: value}); err != nil {
		return entities.Strategy{}, err
	}
	e.logger.WithFields(logrus.Fields{"action": entities.ActionSelect, "target": target.Name, "value": value}).Info("Selecting")

	lookup, err := e.resolveFor(ctx, scope, entities.ActionSelect, target)
	if err != nil {
		return entities.Strategy{}, err
	}
	e.scrollTo(lookup.Element)
	if err := lookup.Element.SelectOption(value, e.opts.ActionTimeout); err != nil {
		return lookup.Strategy, &entities.ActionError{Action: entities.ActionSelect, Target: target.Name, Tried: []string{lookup.Strategy.String()}, Err: err}
	}
	return lookup.Strategy, sleepCtx(ctx, e.opts.Settle.Animation)
}

func (e *Executor) upload(ctx context.Context, scope interfaces.Scope, target entities.Target, files []string) (entities.Strategy, error) {
	if err := e.allow(ctx, entities.Action{Type: entities.ActionUpload, Target: target, Files: files}); err != nil {
		return entities.Strategy{}, err
	}
	if len(files) == 0 {
		return entities.Strategy{}, &entities.ActionError{Action: entities.ActionUpload, Target: target.Name, Err: errors.New("no files given")}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return entities.Strategy{}, &entities.ActionError{Action: entities.ActionUpload, Target: target.Name, Err: fmt.Errorf("fixture file: %w", err)}
		}
	}
	e.logger.WithFields(logrus.Fields{"action": entities.ActionUpload, "target": target.Name, "files": len(files)}).Info("Uploading")

	// File inputs are usually hidden behind a styled drop zone.
	lookup := e.resolver.ResolveAttached(ctx, scope, target)
	if err := e.lookupError(ctx, scope, entities.ActionUpload, target, lookup); err != nil {
		return entities.Strategy{}, err
	}
	if err := lookup.Element.SetInputFiles(files, e.opts.ActionTimeout); err != nil {
		return lookup.Strategy, &entities.ActionError{Action: entities.ActionUpload, Target: target.Name, Tried: []string{lookup.Strategy.String()}, Err: err}
	}
	return lookup.Strategy, sleepCtx(ctx, e.opts.Settle.Animation)
}

// SetChecked - brings a checkbox to the wanted state. The native input is
// clicked first when it is visible; if the state did not change, the label
// is clicked once instead.
func (e *Executor) SetChecked(ctx context.Context, scope interfaces.Scope, box Checkbox, want bool) error {
	action := entities.ActionUncheck
	if want {
		action = entities.ActionCheck
	}
	if err := e.allow(ctx, entities.Action{Type: action, Target: box.Input}); err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{"action": action, "target": box.Name}).Info("Toggling checkbox")

	input := e.resolver.ResolveAttached(ctx, scope, box.Input)
	if err := e.lookupError(ctx, scope, action, box.Input, input); err != nil {
		return err
	}

	current, err := input.Element.IsChecked()
	if err != nil {
		return &entities.ActionError{Action: action, Target: box.Name, Err: err}
	}
	if current == want {
		return nil
	}

	var primaryErr error
	if visible, _ := input.Element.IsVisible(); visible {
		primaryErr = e.clickElement(input.Element)
		if primaryErr == nil {
			outcome, err := e.waitChecked(ctx, input.Element, want)
			switch outcome {
			case entities.Found:
				return sleepCtx(ctx, e.opts.Settle.Animation)
			case entities.Failed:
				return &entities.ActionError{Action: action, Target: box.Name, Tried: box.Input.Selectors(), Err: err}
			}
		}
	}

	if len(box.Label.Candidates) == 0 {
		cause := entities.ErrStateUnchanged
		if primaryErr != nil {
			cause = primaryErr
		}
		return &entities.ActionError{Action: action, Target: box.Name, Tried: box.Input.Selectors(), Err: cause}
	}

	e.logger.WithField("target", box.Name).Debug("Falling back to the checkbox label")
	label, err := e.resolveFor(ctx, scope, action, box.Label)
	if err != nil {
		return err
	}
	if err := e.clickElement(label.Element); err != nil {
		return &entities.ActionError{Action: action, Target: box.Name, Step: "label fallback", Tried: box.Label.Selectors(), Err: err}
	}

	outcome, err := e.waitChecked(ctx, input.Element, want)
	if outcome == entities.Failed {
		return &entities.ActionError{Action: action, Target: box.Name, Step: "label fallback", Err: err}
	}
	if outcome == entities.NotFound {
		return &entities.ActionError{
			Action: action,
			Target: box.Name,
			Tried:  append(box.Input.Selectors(), box.Label.Selectors()...),
			Err:    entities.ErrStateUnchanged,
		}
	}
	return sleepCtx(ctx, e.opts.Settle.Animation)
}

// waitChecked - polls the checked state until it equals want
func (e *Executor) waitChecked(ctx context.Context, el interfaces.Element, want bool) (entities.Outcome, error) {
	return poll(ctx, e.resolver.Policy(), func() (bool, error) {
		now, err := el.IsChecked()
		return err == nil && now == want, err
	})
}

// Composite - runs named steps in order; the first failure aborts and is
// reported with the name of the step
func (e *Executor) Composite(ctx context.Context, action entities.ActionType, name string, steps ...Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &entities.ActionError{Action: action, Target: name, Step: step.Name, Err: err}
		}
		e.logger.WithFields(logrus.Fields{"action": action, "target": name, "step": step.Name}).Debug("Composite step")
		if err := step.Run(ctx); err != nil {
			return &entities.ActionError{Action: action, Target: name, Step: step.Name, Err: err}
		}
	}
	return nil
}

// PickOption - opens a dropdown, picks an option in its panel and makes
// sure the panel is dismissed afterwards
func (e *Executor) PickOption(ctx context.Context, page interfaces.Page, dd Dropdown, option string) error {
	optionTarget := OptionTarget
	if dd.Option != nil {
		optionTarget = dd.Option
	}

	var panel interfaces.Element
	return e.Composite(ctx, entities.ActionPick, dd.Name,
		Step{Name: "open", Run: func(ctx context.Context) error {
			if e.isVisibleNow(page, dd.Panel) {
				return nil
			}
			return e.Click(ctx, page, dd.Toggle)
		}},
		Step{Name: "wait panel", Run: func(ctx context.Context) error {
			lookup, err := e.resolveFor(ctx, page, entities.ActionPick, dd.Panel)
			if err != nil {
				return err
			}
			panel = lookup.Element
			return nil
		}},
		Step{Name: "select option", Run: func(ctx context.Context) error {
			return e.Click(ctx, panel, optionTarget(option))
		}},
		Step{Name: "dismiss", Run: func(ctx context.Context) error {
			return e.dismiss(ctx, page, dd.Panel)
		}},
	)
}

// dismiss closes an overlay panel with Escape if it is still open
func (e *Executor) dismiss(ctx context.Context, page interfaces.Page, panel entities.Target) error {
	if !e.isVisibleNow(page, panel) {
		return nil
	}
	if err := page.PressKey(ctx, "Escape"); err != nil {
		return err
	}
	policy := e.resolver.Policy()
	deadline := time.Now().Add(policy.Timeout)
	for e.isVisibleNow(page, panel) {
		if time.Now().After(deadline) {
			return fmt.Errorf("panel %q still open: %w", panel.Name, entities.ErrStateUnchanged)
		}
		if err := sleepCtx(ctx, policy.PollInterval); err != nil {
			return err
		}
	}
	return nil
}

// isVisibleNow checks the candidates of a target once without waiting
func (e *Executor) isVisibleNow(scope interfaces.Scope, target entities.Target) bool {
	return e.resolver.attempt(scope, target, visibleMatch).Found()
}

// Perform - runs an action described as data and reports the outcome
// instead of returning an error
func (e *Executor) Perform(ctx context.Context, page interfaces.Page, action entities.Action) entities.ActionResult {
	start := time.Now()
	result := entities.ActionResult{Action: action.Type, Target: action.Target.Name, Attempted: true}

	var strategy entities.Strategy
	var err error
	switch action.Type {
	case entities.ActionClick:
		strategy, err = e.click(ctx, page, action.Target)
	case entities.ActionFill:
		strategy, err = e.fill(ctx, page, action.Target, action.Value)
	case entities.ActionSelect:
		strategy, err = e.selectNative(ctx, page, action.Target, action.Value)
	case entities.ActionUpload:
		strategy, err = e.upload(ctx, page, action.Target, action.Files)
	case entities.ActionCheck, entities.ActionUncheck:
		box := Checkbox{Name: action.Target.Name, Input: action.Target}
		if action.Option != nil {
			box.Label = *action.Option
		}
		err = e.SetChecked(ctx, page, box, action.Type == entities.ActionCheck)
	case entities.ActionPick:
		if action.Panel == nil {
			err = fmt.Errorf("pick action on %q needs a panel target", action.Target.Name)
			result.Attempted = false
			break
		}
		dd := Dropdown{Name: action.Target.Name, Toggle: action.Target, Panel: *action.Panel}
		if action.Option != nil {
			opt := *action.Option
			dd.Option = func(string) entities.Target { return opt }
		}
		err = e.PickOption(ctx, page, dd, action.Value)
	case entities.ActionPress:
		result.Target = action.Value
		err = e.PressKey(ctx, page, action.Value)
	case entities.ActionNavigate:
		result.Target = action.Value
		err = page.Navigate(ctx, action.Value)
	default:
		result.Attempted = false
		err = fmt.Errorf("unknown action: %s", action.Type)
	}

	if errors.Is(err, entities.ErrBlocked) {
		result.Attempted = false
	}
	result.Duration = time.Since(start)
	if strategy.Expr != "" {
		result.Strategy = strategy.String()
	}
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	result.Succeeded = true
	return result
}

// allow asks the guard whether the action may run
func (e *Executor) allow(ctx context.Context, action entities.Action) error {
	if e.guard == nil {
		return nil
	}
	if err := e.guard.Allow(ctx, action); err != nil {
		return &entities.ActionError{Action: action.Type, Target: action.Target.Name, Err: err}
	}
	return nil
}

// resolveFor resolves a visible target and turns a miss into an ActionError
func (e *Executor) resolveFor(ctx context.Context, scope interfaces.Scope, action entities.ActionType, target entities.Target) (Lookup, error) {
	lookup := e.resolver.Resolve(ctx, scope, target)
	return lookup, e.lookupError(ctx, scope, action, target, lookup)
}

func (e *Executor) lookupError(ctx context.Context, scope interfaces.Scope, action entities.ActionType, target entities.Target, lookup Lookup) error {
	switch lookup.Outcome {
	case entities.Found:
		return nil
	case entities.Failed:
		return &entities.ActionError{Action: action, Target: target.Name, Tried: lookup.Tried, Err: lookup.Err}
	default:
		return &entities.ActionError{
			Action: action,
			Target: target.Name,
			Tried:  lookup.Tried,
			Hints:  e.hints(ctx, scope, target),
			Err:    fmt.Errorf("%w: not visible within %s", entities.ErrElementNotFound, e.resolver.Policy().Timeout),
		}
	}
}

// hints lists visible interactive elements whose text or selector shares a
// word with the target name
func (e *Executor) hints(ctx context.Context, scope interfaces.Scope, target entities.Target) []string {
	page, ok := scope.(interfaces.Page)
	if !ok {
		return nil
	}
	elements, err := page.InteractiveElements(ctx)
	if err != nil {
		e.logger.Debugf("Failed to collect page diagnostics: %v", err)
		return nil
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(target.Name)) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}

	var hints []string
	for _, el := range elements {
		if !el.IsVisible {
			continue
		}
		text := strings.ToLower(el.Text + " " + el.Selector)
		for _, w := range words {
			if strings.Contains(text, w) {
				hints = append(hints, el.Hint())
				break
			}
		}
		if len(hints) >= maxHints {
			break
		}
	}
	return hints
}
