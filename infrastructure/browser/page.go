package browser

import (
	"context"
	"fmt"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Page adapts a playwright page to interfaces.Page
type Page struct {
	page   playwright.Page
	navTO  time.Duration
	logger logrus.FieldLogger
}

var _ interfaces.Page = (*Page)(nil)

func newPage(page playwright.Page, navTO time.Duration, logger logrus.FieldLogger) *Page {
	return &Page{page: page, navTO: navTO, logger: logger}
}

// Locate - maps a strategy onto the matching playwright locator
func (p *Page) Locate(s entities.Strategy) interfaces.Element {
	var loc playwright.Locator
	switch s.Kind {
	case entities.ByText:
		loc = p.page.GetByText(s.Expr, playwright.PageGetByTextOptions{Exact: playwright.Bool(s.Exact)})
	case entities.ByLabel:
		loc = p.page.GetByLabel(s.Expr, playwright.PageGetByLabelOptions{Exact: playwright.Bool(s.Exact)})
	case entities.ByRole:
		opts := playwright.PageGetByRoleOptions{}
		if s.Name != "" {
			opts.Name = s.Name
			opts.Exact = playwright.Bool(s.Exact)
		}
		loc = p.page.GetByRole(playwright.AriaRole(s.Expr), opts)
	default:
		loc = p.page.Locator(selectorFor(s))
	}
	return newElement(loc, s.String())
}

// Navigate - opens url, relative urls resolve against the session base URL
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.WithField("url", url).Info("Navigating")
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(p.navTO.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, mapError(err))
	}
	return nil
}

// PressKey - sends a key to the focused element
func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, mapError(err))
	}
	return nil
}

// WaitForIdle - waits for network idle; a timeout counts as settled
func (p *Page) WaitForIdle(timeout time.Duration) {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		p.logger.Debugf("Network did not go idle: %v", err)
	}
}

// Info - returns the current URL and title
func (p *Page) Info() (entities.PageInfo, error) {
	if p.page.IsClosed() {
		return entities.PageInfo{}, entities.ErrPageClosed
	}
	title, err := p.page.Title()
	if err != nil {
		return entities.PageInfo{}, fmt.Errorf("failed to get title: %w", mapError(err))
	}
	return entities.PageInfo{URL: p.page.URL(), Title: title}, nil
}

const interactiveElementsJS = `
() => {
	const elements = [];
	const seen = new Set();
	const nodes = document.querySelectorAll(
		'button, a, input, select, textarea, label, [role="button"], [role="option"], [role="tab"], [data-testid], [aria-label]'
	);
	nodes.forEach(el => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		const isVisible = rect.width > 0 && rect.height > 0 &&
			style.display !== 'none' && style.visibility !== 'hidden';
		if (!isVisible) return;

		const tagName = el.tagName.toLowerCase();
		let selector = tagName;
		if (el.getAttribute('data-testid')) {
			selector = '[data-testid="' + el.getAttribute('data-testid') + '"]';
		} else if (el.id) {
			selector = '#' + el.id;
		} else if (el.getAttribute('name')) {
			selector = tagName + '[name="' + el.getAttribute('name') + '"]';
		} else if (el.getAttribute('aria-label')) {
			selector = tagName + '[aria-label="' + el.getAttribute('aria-label') + '"]';
		} else if (typeof el.className === 'string' && el.className.trim()) {
			selector = tagName + '.' + el.className.trim().split(/\s+/).slice(0, 2).join('.');
		}

		const text = (el.innerText || el.value || el.placeholder || el.getAttribute('aria-label') || '').trim();
		const key = selector + '|' + text;
		if (seen.has(key)) return;
		seen.add(key);

		elements.push({
			type: tagName,
			selector: selector,
			text: text.substring(0, 80),
			isVisible: isVisible,
			isClickable: el.disabled !== true,
		});
	});
	return elements.slice(0, 100);
}
`

// InteractiveElements - lists visible controls for failure hints
func (p *Page) InteractiveElements(ctx context.Context) ([]entities.PageElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.page.Evaluate(interactiveElementsJS)
	if err != nil {
		return nil, fmt.Errorf("failed to extract elements: %w", mapError(err))
	}

	elementsData, ok := result.([]interface{})
	if !ok {
		return []entities.PageElement{}, nil
	}

	elements := make([]entities.PageElement, 0, len(elementsData))
	for _, elData := range elementsData {
		elMap, ok := elData.(map[string]interface{})
		if !ok {
			continue
		}
		elements = append(elements, entities.PageElement{
			Type:        getString(elMap, "type"),
			Selector:    getString(elMap, "selector"),
			Text:        getString(elMap, "text"),
			IsVisible:   getBool(elMap, "isVisible"),
			IsClickable: getBool(elMap, "isClickable"),
		})
	}
	return elements, nil
}

// Screenshot - writes a full page screenshot
func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", mapError(err))
	}
	return nil
}

// Close - closes the page, closing twice is fine
func (p *Page) Close() error {
	if p.page.IsClosed() {
		return nil
	}
	return ignoreClosed(p.page.Close())
}

// getString - extracts string value from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getBool - extracts boolean value from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
