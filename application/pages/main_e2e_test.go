//go:build e2e

// Browser tests for the page objects. They drive a real browser against
// fixture copies of both portals served from testdata/site:
//   - main_e2e_test.go: TestMain, fixture servers, helpers
//   - admin_e2e_test.go: login, subscriptions, technical dashboard
//   - customer_e2e_test.go: login, service requests, uploads
package pages_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"
	"portal_automation/infrastructure/browser"
	"portal_automation/infrastructure/security"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	siteDir          = "testdata/site"
	adminPassword    = "admin-pass"
	customerPassword = "customer-pass"
	uploadMaxFiles   = 3
	uploadMaxBytes   = 2 << 20
)

var (
	launcher    *browser.Launcher
	adminURL    string
	customerURL string
)

// portalHandler serves /<name> from <root>/<name>.html and shared assets
// from the static directory
func portalHandler(root string) http.Handler {
	static := http.FileServer(http.Dir(filepath.Join(siteDir, "static")))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(r.URL.Path, "/")
		if name == "" {
			name = "login"
		}
		page := filepath.Join(root, filepath.Clean(name)+".html")
		if _, err := os.Stat(page); err == nil {
			http.ServeFile(w, r, page)
			return
		}
		static.ServeHTTP(w, r)
	})
}

func TestMain(m *testing.M) {
	admin := httptest.NewServer(portalHandler(filepath.Join(siteDir, "admin")))
	customer := httptest.NewServer(portalHandler(filepath.Join(siteDir, "customer")))
	adminURL, customerURL = admin.URL, customer.URL

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	var err error
	launcher, err = browser.NewLauncher(browser.LaunchOptions{
		Browser:           "chromium",
		Headless:          os.Getenv("E2E_HEADLESS") != "false",
		NavigationTimeout: 15 * time.Second,
		Install:           true,
	}, logger)
	if err != nil {
		fmt.Printf("failed to start browser: %v\n", err)
		admin.Close()
		customer.Close()
		os.Exit(1)
	}

	code := m.Run()

	if err := launcher.Close(); err != nil {
		fmt.Printf("failed to close browser: %v\n", err)
	}
	admin.Close()
	customer.Close()
	os.Exit(code)
}

// newDriver opens an isolated session on baseURL and returns a driver bound
// to its page
func newDriver(t *testing.T, baseURL string, allowDestructive bool) (*ui.Driver, interfaces.Session) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	session, err := launcher.NewSession(context.Background(), interfaces.SessionOptions{BaseURL: baseURL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	kit, err := ui.NewKit(logger, security.NewSecurityLayer(logger, allowDestructive), ui.Options{
		Lookup:        entities.WaitPolicy{Timeout: 5 * time.Second, PollInterval: 100 * time.Millisecond},
		ActionTimeout: 5 * time.Second,
		Settle:        entities.SettleDelays{Animation: 50 * time.Millisecond, Debounce: 50 * time.Millisecond},
	})
	require.NoError(t, err)
	return kit.On(session.Page()), session
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)
	return ctx
}
