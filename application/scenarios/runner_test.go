package scenarios

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"
	"portal_automation/infrastructure/config"
	"portal_automation/infrastructure/security"
	"portal_automation/infrastructure/storage"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePage struct {
	url   string
	shots []string
}

func (p *fakePage) Locate(entities.Strategy) interfaces.Element { return nil }
func (p *fakePage) Navigate(context.Context, string) error { return nil }
func (p *fakePage) PressKey(context.Context, string) error { return nil }
func (p *fakePage) WaitForIdle(time.Duration) {}
func (p *fakePage) Close() error { return nil }
func (p *fakePage) Info() (entities.PageInfo, error) {
	return entities.PageInfo{URL: p.url, Title: "Fake"}, nil
}
func (p *fakePage) InteractiveElements(context.Context) ([]entities.PageElement, error) {
	return nil, nil
}
func (p *fakePage) Screenshot(path string) error {
	p.shots = append(p.shots, path)
	return os.WriteFile(path, []byte("png"), 0644)
}

type fakeSession struct {
	page      *fakePage
	opts      interfaces.SessionOptions
	savedTo   []string
	closed    bool
	closeCall int
}

func (s *fakeSession) Page() interfaces.Page { return s.page }
func (s *fakeSession) ExpectNewPage(context.Context, time.Duration, func() error) (interfaces.Page, error) {
	return nil, errors.New("not supported")
}
func (s *fakeSession) SaveState(path string) error {
	s.savedTo = append(s.savedTo, path)
	return nil
}
func (s *fakeSession) Close() error {
	s.closed = true
	s.closeCall++
	return nil
}

type fakeLauncher struct {
	mu       sync.Mutex
	sessions []*fakeSession
	err      error
}

func (l *fakeLauncher) NewSession(_ context.Context, opts interfaces.SessionOptions) (interfaces.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	s := &fakeSession{page: &fakePage{url: opts.BaseURL + "/somewhere"}, opts: opts}
	l.sessions = append(l.sessions, s)
	return s, nil
}

func (l *fakeLauncher) Close() error { return nil }

func newTestRunner(t *testing.T, launcher *fakeLauncher) (*Runner, interfaces.ArtifactStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	kit, err := ui.NewKit(logger, security.NewSecurityLayer(logger, false), ui.Options{
		Lookup:        entities.WaitPolicy{Timeout: 100 * time.Millisecond, PollInterval: 10 * time.Millisecond},
		ActionTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	store, _, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	return NewRunner(launcher, kit, store, nil, logger, Options{
		Portals: map[string]config.Portal{
			PortalAdmin: {BaseURL: "https://admin.example.test", Username: "ops", Password: "secret"},
		},
	}), store
}

func pass(name string) Step {
	return Step{Name: name, Run: func(context.Context, *Env) error { return nil }}
}

func fail(name string, optional bool) Step {
	return Step{Name: name, Optional: optional, Run: func(context.Context, *Env) error {
		return errors.New("boom")
	}}
}

func TestRunner_AllStepsPass(t *testing.T) {
	launcher := &fakeLauncher{}
	runner, store := newTestRunner(t, launcher)

	var seen *Env
	report := runner.Run(context.Background(), "run-1", []Scenario{{
		Name:   "happy",
		Portal: PortalAdmin,
		Steps: []Step{
			pass("one"),
			{Name: "two", Run: func(_ context.Context, env *Env) error {
				seen = env
				return nil
			}},
		},
	}})

	require.Len(t, report.Scenarios, 1)
	assert.True(t, report.Passed())
	assert.Equal(t, "run-1", report.RunID)

	sc := report.Scenarios[0]
	assert.Equal(t, entities.StatusPassed, sc.Status)
	require.Len(t, sc.Steps, 2)
	for _, step := range sc.Steps {
		assert.Equal(t, entities.StatusPassed, step.Status)
		require.NotNil(t, step.Page)
		assert.Equal(t, "https://admin.example.test/somewhere", step.Page.URL)
	}

	require.Len(t, launcher.sessions, 1)
	session := launcher.sessions[0]
	assert.Equal(t, "https://admin.example.test", session.opts.BaseURL)
	assert.Equal(t, store.StatePath(PortalAdmin), session.opts.StatePath)
	assert.Equal(t, []string{store.StatePath(PortalAdmin)}, session.savedTo)
	assert.True(t, session.closed)

	require.NotNil(t, seen)
	assert.Equal(t, "ops", seen.Portal.Username)
	assert.Same(t, session, seen.Session)
}

func TestRunner_FailedStepSkipsRestAndTakesScreenshot(t *testing.T) {
	launcher := &fakeLauncher{}
	runner, _ := newTestRunner(t, launcher)

	report := runner.Run(context.Background(), "run-2", []Scenario{{
		Name:   "broken",
		Portal: PortalAdmin,
		Steps:  []Step{pass("one"), fail("two", false), pass("three")},
	}})

	sc := report.Scenarios[0]
	assert.Equal(t, entities.StatusFailed, sc.Status)
	assert.False(t, report.Passed())

	assert.Equal(t, entities.StatusPassed, sc.Steps[0].Status)
	assert.Equal(t, entities.StatusFailed, sc.Steps[1].Status)
	assert.Equal(t, "boom", sc.Steps[1].Error)
	assert.Equal(t, entities.StatusSkipped, sc.Steps[2].Status)
	assert.Equal(t, "previous step failed", sc.Steps[2].Error)

	shot := sc.Steps[1].Screenshot
	require.NotEmpty(t, shot)
	assert.FileExists(t, shot)
	assert.Contains(t, filepath.Base(shot), "broken-two")

	session := launcher.sessions[0]
	assert.Empty(t, session.savedTo)
	assert.Equal(t, 1, session.closeCall)
}

func TestRunner_OptionalAndSkippedSteps(t *testing.T) {
	launcher := &fakeLauncher{}
	runner, _ := newTestRunner(t, launcher)

	report := runner.Run(context.Background(), "run-3", []Scenario{{
		Name:   "lenient",
		Portal: PortalAdmin,
		Steps: []Step{
			fail("optional", true),
			{Name: "nothing to do", Run: func(context.Context, *Env) error {
				return ErrSkipped
			}},
			pass("last"),
		},
	}})

	sc := report.Scenarios[0]
	assert.Equal(t, entities.StatusPassed, sc.Status)
	assert.Equal(t, entities.StatusSkipped, sc.Steps[0].Status)
	assert.True(t, sc.Steps[0].Optional)
	assert.Empty(t, sc.Steps[0].Screenshot)
	assert.Equal(t, entities.StatusSkipped, sc.Steps[1].Status)
	assert.Equal(t, entities.StatusPassed, sc.Steps[2].Status)
}

func TestRunner_UnconfiguredPortalIsSkipped(t *testing.T) {
	launcher := &fakeLauncher{}
	runner, _ := newTestRunner(t, launcher)

	report := runner.Run(context.Background(), "run-4", []Scenario{{
		Name:   "customer only",
		Portal: PortalCustomer,
		Steps:  []Step{pass("one"), pass("two")},
	}})

	sc := report.Scenarios[0]
	assert.Equal(t, entities.StatusSkipped, sc.Status)
	require.Len(t, sc.Steps, 2)
	for _, step := range sc.Steps {
		assert.Equal(t, entities.StatusSkipped, step.Status)
		assert.Contains(t, step.Error, "not configured")
	}
	assert.Empty(t, launcher.sessions)

	passed, failed, skip := report.Counts()
	assert.Equal(t, [3]int{0, 0, 1}, [3]int{passed, failed, skip})
}

func TestRunner_SessionError(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("browser gone")}
	runner, _ := newTestRunner(t, launcher)

	report := runner.Run(context.Background(), "run-5", []Scenario{{
		Name:   "no browser",
		Portal: PortalAdmin,
		Steps:  []Step{pass("one")},
	}})

	sc := report.Scenarios[0]
	assert.Equal(t, entities.StatusFailed, sc.Status)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, "open session", sc.Steps[0].Name)
	assert.Equal(t, "browser gone", sc.Steps[0].Error)
}

func TestRunner_CancelledContext(t *testing.T) {
	launcher := &fakeLauncher{}
	runner, _ := newTestRunner(t, launcher)

	ctx, cancel := context.WithCancel(context.Background())
	report := runner.Run(ctx, "run-6", []Scenario{
		{
			Name:   "first",
			Portal: PortalAdmin,
			Steps: []Step{
				{Name: "cancel", Run: func(context.Context, *Env) error {
					cancel()
					return nil
				}},
				pass("after cancel"),
			},
		},
		{Name: "second", Portal: PortalAdmin, Steps: []Step{pass("never")}},
	})

	first := report.Scenarios[0]
	assert.Equal(t, entities.StatusFailed, first.Status)
	assert.Equal(t, entities.StatusPassed, first.Steps[0].Status)
	assert.Equal(t, entities.StatusSkipped, first.Steps[1].Status)
	assert.Contains(t, first.Steps[1].Error, "cancelled")

	second := report.Scenarios[1]
	assert.Equal(t, entities.StatusSkipped, second.Status)
	assert.Len(t, launcher.sessions, 1)
}
