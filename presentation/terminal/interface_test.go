package terminal

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/storage"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	ti := NewTerminalInterface(&stdout, &stderr)
	missingEnv := filepath.Join(t.TempDir(), "missing.env")
	err := ti.Execute(context.Background(), append(args, "--env-file", missingEnv))
	return stdout.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	for _, name := range []string{
		"admin-subscriptions",
		"admin-technical-dashboard",
		"customer-service-requests",
		"customer-upload-limits",
	} {
		assert.Contains(t, out, name)
	}
}

func TestRunCommand_RejectsUnknownScenario(t *testing.T) {
	_, err := execute(t, "run", "no-such-scenario", "--artifacts-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scenario(s): no-such-scenario")
}

func TestRunCommand_ValidatesFlags(t *testing.T) {
	_, err := execute(t, "run", "--browser", "netscape", "--artifacts-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BrowserName")
}

func TestReportCommand(t *testing.T) {
	root := t.TempDir()
	store, runID, err := storage.NewArtifactStore(root)
	require.NoError(t, err)
	_, err = store.SaveReport(entities.Report{
		Duration: 2 * time.Second,
		Scenarios: []entities.ScenarioResult{{
			Name:   "admin-subscriptions",
			Portal: "admin",
			Status: entities.StatusPassed,
			Steps:  []entities.StepResult{{Name: "log in", Status: entities.StatusPassed}},
		}},
	})
	require.NoError(t, err)

	out, err := execute(t, "report", runID, "--artifacts-dir", root)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "✓ admin-subscriptions")
	assert.Contains(t, out, "1 passed")

	_, err = execute(t, "report", "not-a-run", "--artifacts-dir", root)
	assert.ErrorContains(t, err, "invalid run id")

	_, err = execute(t, "report")
	assert.Error(t, err)
}

func TestRunFlags_ApplyOnlyChanged(t *testing.T) {
	f := &runFlags{}
	flags := runFlagSet(f)
	require.NoError(t, flags.Parse([]string{"--headless=false", "--allow-destructive"}))

	cfg := config.Config{BrowserName: "webkit", BrowserHeadless: true, InstallBrowsers: true}
	f.apply(flags, &cfg)

	assert.Equal(t, "webkit", cfg.BrowserName)
	assert.False(t, cfg.BrowserHeadless)
	assert.True(t, cfg.AllowDestructive)
	assert.True(t, cfg.InstallBrowsers)
}
