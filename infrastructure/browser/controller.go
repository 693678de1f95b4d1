package browser

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"portal_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// LaunchOptions configures the browser process
type LaunchOptions struct {
	Browser           string // chromium, firefox or webkit
	Headless          bool
	SlowMo            time.Duration
	NavigationTimeout time.Duration
	// Install downloads the browser binaries before starting.
	Install bool
}

// Launcher owns the playwright driver and one browser process. Sessions
// handed out by it are isolated browser contexts.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    LaunchOptions
	logger  logrus.FieldLogger

	mu       sync.Mutex
	sessions []*Session
}

var _ interfaces.Launcher = (*Launcher)(nil)

// NewLauncher - starts playwright and launches the configured browser
func NewLauncher(opts LaunchOptions, logger logrus.FieldLogger) (*Launcher, error) {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}

	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", opts.Browser)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	}
	if opts.Browser == "chromium" {
		launch.Args = []string{
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-popup-blocking",
			"--disable-notifications",
		}
	}

	b, err := browserType.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.WithFields(logrus.Fields{"browser": opts.Browser, "headless": opts.Headless}).Info("Browser launched")

	return &Launcher{pw: pw, browser: b, opts: opts, logger: logger}, nil
}

// NewSession - creates an isolated browser context with one page
func (l *Launcher) NewSession(ctx context.Context, opts interfaces.SessionOptions) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(true),
	}
	if opts.BaseURL != "" {
		contextOptions.BaseURL = playwright.String(opts.BaseURL)
	}
	if opts.StatePath != "" {
		if _, err := os.Stat(opts.StatePath); err == nil {
			contextOptions.StorageStatePath = playwright.String(opts.StatePath)
			l.logger.WithField("state", opts.StatePath).Debug("Restoring saved session state")
		}
	}

	bctx, err := l.browser.NewContext(contextOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	bctx.SetDefaultNavigationTimeout(float64(l.opts.NavigationTimeout.Milliseconds()))

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &Session{
		context: bctx,
		page:    newPage(page, l.opts.NavigationTimeout, l.logger),
		logger:  l.logger,
		navTO:   l.opts.NavigationTimeout,
		onClose: l.forget,
	}

	l.mu.Lock()
	l.sessions = append(l.sessions, s)
	l.mu.Unlock()

	return s, nil
}

// forget - removes a closed session from the launcher
func (l *Launcher) forget(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = slices.DeleteFunc(l.sessions, func(open *Session) bool {
		return open == s
	})
}

// Close - closes every session, the browser and the driver
func (l *Launcher) Close() error {
	l.mu.Lock()
	sessions := l.sessions
	l.sessions = nil
	l.mu.Unlock()

	var closeErr error
	for _, s := range sessions {
		closeErr = multierr.Append(closeErr, s.Close())
	}
	if l.browser != nil {
		closeErr = multierr.Append(closeErr, ignoreClosed(l.browser.Close()))
		l.browser = nil
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			closeErr = multierr.Append(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		l.pw = nil
	}
	return closeErr
}

// Session is one browser context and the page a scenario drives
type Session struct {
	context playwright.BrowserContext
	page    *Page
	logger  logrus.FieldLogger
	navTO   time.Duration
	onClose func(*Session)

	closeOnce sync.Once
	closeErr  error
}

var _ interfaces.Session = (*Session)(nil)

// Page - returns the page the session started with
func (s *Session) Page() interfaces.Page {
	return s.page
}

// ExpectNewPage - subscribes to page creation, runs trigger and waits for
// the new page. playwright registers the listener before calling trigger.
func (s *Session) ExpectNewPage(ctx context.Context, timeout time.Duration, trigger func() error) (interfaces.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := s.context.ExpectPage(trigger, playwright.BrowserContextExpectPageOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("new tab did not open: %w", mapError(err))
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(float64(s.navTO.Milliseconds())),
	}); err != nil {
		s.logger.Warnf("New tab did not finish loading: %v", err)
	}

	s.logger.WithField("url", page.URL()).Info("New tab opened")
	return newPage(page, s.navTO, s.logger), nil
}

// SaveState - saves cookies and local storage for later sessions
func (s *Session) SaveState(path string) error {
	if _, err := s.context.StorageState(path); err != nil {
		if isClosedError(err) {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}
	return nil
}

// Close - closes the context; closing twice is a no-op
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := ignoreClosed(s.context.Close()); err != nil {
			s.closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		if s.onClose != nil {
			s.onClose(s)
		}
	})
	return s.closeErr
}

// isClosedError - reports errors caused by an already closed target
func isClosedError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

func ignoreClosed(err error) error {
	if isClosedError(err) {
		return nil
	}
	return err
}
