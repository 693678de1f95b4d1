// Package terminal is the command line front end: it loads configuration,
// wires the browser, artifact store and scenario runner together and prints
// run summaries.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"portal_automation/application/scenarios"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrScenariosFailed is returned by the run command when at least one
// scenario failed
var ErrScenariosFailed = errors.New("one or more scenarios failed")

type globalFlags struct {
	envFile      string
	artifactsDir string
}

type TerminalInterface struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags
	root   *cobra.Command
}

func NewTerminalInterface(stdout, stderr io.Writer) *TerminalInterface {
	t := &TerminalInterface{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "portal_automation",
		Short: "Browser checks for the admin and customer portals",
		Long: `Browser checks for the admin and customer portals.

  Portal URLs, credentials and timeouts are read from the environment or an
  env file. Run "portal_automation list" to see the available scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().AddFlagSet(t.globalFlagSet())

	root.AddCommand(
		t.runCmd(),
		t.listCmd(),
		t.reportCmd(),
	)
	t.root = root
	return t
}

func (t *TerminalInterface) globalFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVar(&t.flags.envFile, "env-file", ".env", "env file to load before reading the environment")
	flags.StringVar(&t.flags.artifactsDir, "artifacts-dir", "", "directory for screenshots, reports and saved logins (overrides ARTIFACTS_DIR)")
	return flags
}

// Execute runs the command line given in args
func (t *TerminalInterface) Execute(ctx context.Context, args []string) error {
	t.root.SetArgs(args)
	return t.root.ExecuteContext(ctx)
}

func (t *TerminalInterface) loadConfig() (config.Config, error) {
	cfg, err := config.Load(t.flags.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if t.flags.artifactsDir != "" {
		cfg.ArtifactsDir = t.flags.artifactsDir
	}
	return cfg, nil
}

func (t *TerminalInterface) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, sc := range scenarios.Catalog() {
				fmt.Fprintf(t.stdout, "%-28s %-9s %s\n", sc.Name, sc.Portal, sc.Description)
			}
			return nil
		},
	}
}

func (t *TerminalInterface) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show the summary of a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := t.loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.OpenArtifactStore(cfg.ArtifactsDir)
			if err != nil {
				return err
			}
			report, err := store.LoadReport(args[0])
			if err != nil {
				return fmt.Errorf("failed to load report: %w", err)
			}
			printReport(t.stdout, report)
			return nil
		},
	}
}
