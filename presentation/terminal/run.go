package terminal

import (
	"fmt"
	"strings"

	"portal_automation/application/scenarios"
	"portal_automation/application/ui"
	"portal_automation/infrastructure/browser"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/fixtures"
	"portal_automation/infrastructure/security"
	"portal_automation/infrastructure/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type runFlags struct {
	browser          string
	headless         bool
	allowDestructive bool
	install          bool
}

func runFlagSet(f *runFlags) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVar(&f.browser, "browser", "chromium", "browser engine: chromium, firefox or webkit (overrides BROWSER_NAME)")
	flags.BoolVar(&f.headless, "headless", true, "run the browser without a window (overrides BROWSER_HEADLESS)")
	flags.BoolVar(&f.allowDestructive, "allow-destructive", false, "let scenarios cancel, delete or reset portal data (overrides ALLOW_DESTRUCTIVE)")
	flags.BoolVar(&f.install, "install", false, "download the browser before running (overrides BROWSER_INSTALL)")
	return flags
}

// apply copies explicitly set flags over the configuration
func (f *runFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("browser") {
		cfg.BrowserName = f.browser
	}
	if flags.Changed("headless") {
		cfg.BrowserHeadless = f.headless
	}
	if flags.Changed("allow-destructive") {
		cfg.AllowDestructive = f.allowDestructive
	}
	if flags.Changed("install") {
		cfg.InstallBrowsers = f.install
	}
}

func (t *TerminalInterface) runCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios against the configured portals",
		Long: `Run scenarios against the configured portals.

  Without arguments every scenario is run. Scenarios of a portal without a
  base URL or credentials are reported as skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			list, err := scenarios.Select(args)
			if err != nil {
				return err
			}
			return t.run(cmd, cfg, list)
		},
	}
	cmd.Flags().AddFlagSet(runFlagSet(f))
	return cmd
}

func (t *TerminalInterface) run(cmd *cobra.Command, cfg config.Config, list []scenarios.Scenario) error {
	logger := cfg.Logger()
	logger.SetOutput(t.stderr)

	store, runID, err := storage.NewArtifactStore(cfg.ArtifactsDir)
	if err != nil {
		return err
	}
	log := logger.WithField("run_id", runID)

	fx, err := fixtures.NewSet(log)
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := fx.Cleanup(); cleanupErr != nil {
			log.WithError(cleanupErr).Warn("Failed to remove upload fixtures")
		}
	}()

	launcher, err := browser.NewLauncher(browser.LaunchOptions{
		Browser:           cfg.BrowserName,
		Headless:          cfg.BrowserHeadless,
		SlowMo:            cfg.SlowMo(),
		NavigationTimeout: cfg.NavigationTimeout,
		Install:           cfg.InstallBrowsers,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := launcher.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Failed to close browser")
		}
	}()

	kit, err := ui.NewKit(log, security.NewSecurityLayer(log, cfg.AllowDestructive), ui.Options{
		Lookup:        cfg.WaitPolicy(),
		ActionTimeout: cfg.ActionTimeout,
		Settle:        cfg.SettleDelays(),
	})
	if err != nil {
		return err
	}

	runner := scenarios.NewRunner(launcher, kit, store, fx, log, scenarios.Options{
		Portals: map[string]config.Portal{
			scenarios.PortalAdmin:    cfg.Admin(),
			scenarios.PortalCustomer: cfg.Customer(),
		},
		Params: scenarios.Params{
			Server:            cfg.ScenarioServer,
			Interval:          cfg.ScenarioInterval,
			DashboardInterval: cfg.ScenarioDashboardInterval,
			Category:          cfg.ScenarioCategory,
		},
		Limits: scenarios.Limits{
			MaxFiles: cfg.UploadMaxFiles,
			MaxBytes: cfg.UploadMaxBytes,
		},
	})

	log.WithField("scenarios", strings.Join(names(list), ",")).Info("Run started")
	report := runner.Run(cmd.Context(), runID, list)

	path, saveErr := store.SaveReport(report)
	printReport(t.stdout, report)
	if saveErr != nil {
		log.WithError(saveErr).Error("Failed to save report")
	} else {
		fmt.Fprintf(t.stdout, "report: %s\n", valueColor.Sprint(path))
	}

	if _, failed, _ := report.Counts(); failed > 0 {
		return ErrScenariosFailed
	}
	return nil
}

func names(list []scenarios.Scenario) []string {
	out := make([]string, 0, len(list))
	for _, sc := range list {
		out = append(out, sc.Name)
	}
	return out
}
