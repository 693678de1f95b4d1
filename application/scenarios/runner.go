package scenarios

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/fixtures"

	"github.com/sirupsen/logrus"
)

// Options configures a Runner
type Options struct {
	Portals map[string]config.Portal
	Params  Params
	Limits  Limits
}

// Runner executes scenarios one after another, each in its own session
type Runner struct {
	launcher interfaces.Launcher
	kit      *ui.Kit
	store    interfaces.ArtifactStore
	fixtures *fixtures.Set
	logger   logrus.FieldLogger
	opts     Options
}

// NewRunner - creates a runner
func NewRunner(launcher interfaces.Launcher, kit *ui.Kit, store interfaces.ArtifactStore, fx *fixtures.Set, logger logrus.FieldLogger, opts Options) *Runner {
	return &Runner{
		launcher: launcher,
		kit:      kit,
		store:    store,
		fixtures: fx,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes the scenarios in order and returns the run report. A failed
// scenario does not stop the ones after it; a cancelled context does.
func (r *Runner) Run(ctx context.Context, runID string, list []Scenario) entities.Report {
	report := entities.Report{RunID: runID, StartedAt: time.Now()}
	for _, sc := range list {
		report.Scenarios = append(report.Scenarios, r.runScenario(ctx, sc))
	}
	report.Duration = time.Since(report.StartedAt)
	return report
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario) (result entities.ScenarioResult) {
	start := time.Now()
	log := r.logger.WithFields(logrus.Fields{"scenario": sc.Name, "portal": sc.Portal})
	result = entities.ScenarioResult{Name: sc.Name, Portal: sc.Portal, Status: entities.StatusRunning}
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.Status = entities.StatusSkipped
		result.Steps = skipAll(sc.Steps, fmt.Sprintf("run cancelled: %v", err))
		return result
	}

	portal := r.opts.Portals[sc.Portal]
	if !portal.Configured() || !portal.HasCredentials() {
		log.Warn("Portal is not configured, skipping scenario")
		result.Status = entities.StatusSkipped
		result.Steps = skipAll(sc.Steps, fmt.Sprintf("%s portal is not configured", sc.Portal))
		return result
	}

	log.Info("Scenario started")
	statePath := r.store.StatePath(sc.Portal)
	session, err := r.launcher.NewSession(ctx, interfaces.SessionOptions{
		BaseURL:   portal.BaseURL,
		StatePath: statePath,
	})
	if err != nil {
		log.WithError(err).Error("Failed to open browser session")
		result.Status = entities.StatusFailed
		result.Steps = []entities.StepResult{{
			Name:   "open session",
			Status: entities.StatusFailed,
			Error:  err.Error(),
		}}
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser session")
		}
	}()

	env := &Env{
		Driver:   r.kit.On(session.Page()),
		Session:  session,
		Portal:   portal,
		Params:   r.opts.Params,
		Limits:   r.opts.Limits,
		Fixtures: r.fixtures,
	}

	failed := false
	for _, step := range sc.Steps {
		if failed {
			result.Steps = append(result.Steps, skipped(step, "previous step failed"))
			continue
		}
		if err := ctx.Err(); err != nil {
			failed = true
			result.Steps = append(result.Steps, skipped(step, fmt.Sprintf("run cancelled: %v", err)))
			continue
		}
		res := r.runStep(ctx, log, sc, step, env)
		result.Steps = append(result.Steps, res)
		failed = res.Status == entities.StatusFailed
	}

	if failed {
		result.Status = entities.StatusFailed
		log.Warn("Scenario failed")
		return result
	}

	if err := session.SaveState(statePath); err != nil {
		log.WithError(err).Warn("Failed to save browser state")
	}
	result.Status = entities.StatusPassed
	log.Info("Scenario passed")
	return result
}

func (r *Runner) runStep(ctx context.Context, log logrus.FieldLogger, sc Scenario, step Step, env *Env) entities.StepResult {
	log = log.WithField("step", step.Name)
	log.Debug("Step started")

	start := time.Now()
	err := step.Run(ctx, env)
	res := entities.StepResult{
		Name:     step.Name,
		Optional: step.Optional,
		Duration: time.Since(start),
	}
	if info, infoErr := env.Driver.Page.Info(); infoErr == nil {
		res.Page = &info
	}

	switch {
	case err == nil:
		res.Status = entities.StatusPassed
		log.WithField("duration", res.Duration).Info("Step passed")
	case errors.Is(err, ErrSkipped) || step.Optional:
		res.Status = entities.StatusSkipped
		res.Error = err.Error()
		log.WithError(err).Warn("Step skipped")
	default:
		res.Status = entities.StatusFailed
		res.Error = err.Error()
		res.Screenshot = r.screenshot(log, env.Driver.Page, sc.Name+"-"+step.Name)
		log.WithError(err).WithField("duration", res.Duration).Error("Step failed")
	}
	return res
}

// screenshot captures the page for a failed step, returning "" when it
// could not be taken
func (r *Runner) screenshot(log logrus.FieldLogger, page interfaces.Page, name string) string {
	path, err := r.store.ScreenshotPath(name)
	if err != nil {
		log.WithError(err).Warn("Failed to reserve screenshot path")
		return ""
	}
	if err := page.Screenshot(path); err != nil {
		log.WithError(err).Warn("Failed to take screenshot")
		return ""
	}
	return path
}

func skipped(step Step, reason string) entities.StepResult {
	return entities.StepResult{
		Name:     step.Name,
		Status:   entities.StatusSkipped,
		Optional: step.Optional,
		Error:    reason,
	}
}

func skipAll(steps []Step, reason string) []entities.StepResult {
	results := make([]entities.StepResult, 0, len(steps))
	for _, step := range steps {
		results = append(results, skipped(step, reason))
	}
	return results
}
