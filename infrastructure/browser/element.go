package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"

	"github.com/gabriel-vasile/mimetype"
	"github.com/playwright-community/playwright-go"
)

// Element adapts a playwright locator to interfaces.Element
type Element struct {
	loc  playwright.Locator
	desc string
}

var _ interfaces.Element = (*Element)(nil)

func newElement(loc playwright.Locator, desc string) *Element {
	return &Element{loc: loc, desc: desc}
}

// selectorFor - renders css and xpath strategies as playwright selectors
func selectorFor(s entities.Strategy) string {
	if s.Kind == entities.ByXPath {
		return "xpath=" + s.Expr
	}
	return s.Expr
}

const targetClosedMessage = "Target page, context or browser has been closed"

// isTargetClosed matches only the driver's own closed-target error, so a
// selector quoting the word "closed" is not mistaken for a dead page.
func isTargetClosed(err error) bool {
	return errors.Is(err, playwright.ErrTargetClosed) || strings.Contains(err.Error(), targetClosedMessage)
}

// mapError - translates playwright errors into domain sentinels
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", entities.ErrTimeout, err)
	case isTargetClosed(err):
		return fmt.Errorf("%w: %v", entities.ErrPageClosed, err)
	}
	return err
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// Locate - looks up nodes inside this element
func (e *Element) Locate(s entities.Strategy) interfaces.Element {
	var loc playwright.Locator
	switch s.Kind {
	case entities.ByText:
		loc = e.loc.GetByText(s.Expr, playwright.LocatorGetByTextOptions{Exact: playwright.Bool(s.Exact)})
	case entities.ByLabel:
		loc = e.loc.GetByLabel(s.Expr, playwright.LocatorGetByLabelOptions{Exact: playwright.Bool(s.Exact)})
	case entities.ByRole:
		opts := playwright.LocatorGetByRoleOptions{}
		if s.Name != "" {
			opts.Name = s.Name
			opts.Exact = playwright.Bool(s.Exact)
		}
		loc = e.loc.GetByRole(playwright.AriaRole(s.Expr), opts)
	default:
		loc = e.loc.Locator(selectorFor(s))
	}
	return newElement(loc, e.desc+" >> "+s.String())
}

func (e *Element) First() interfaces.Element {
	return newElement(e.loc.First(), e.desc)
}

func (e *Element) Nth(n int) interfaces.Element {
	return newElement(e.loc.Nth(n), fmt.Sprintf("%s >> nth=%d", e.desc, n))
}

func (e *Element) Count() (int, error) {
	n, err := e.loc.Count()
	return n, mapError(err)
}

func (e *Element) IsVisible() (bool, error) {
	visible, err := e.loc.IsVisible()
	return visible, mapError(err)
}

func (e *Element) IsEnabled() (bool, error) {
	enabled, err := e.loc.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: playwright.Float(1000)})
	return enabled, mapError(err)
}

func (e *Element) IsChecked() (bool, error) {
	checked, err := e.loc.IsChecked(playwright.LocatorIsCheckedOptions{Timeout: playwright.Float(1000)})
	return checked, mapError(err)
}

func (e *Element) ScrollIntoView(timeout time.Duration) error {
	return mapError(e.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: ms(timeout)}))
}

func (e *Element) Click(timeout time.Duration) error {
	return mapError(e.loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)}))
}

func (e *Element) Fill(value string, timeout time.Duration) error {
	return mapError(e.loc.Fill(value, playwright.LocatorFillOptions{Timeout: ms(timeout)}))
}

func (e *Element) SelectOption(value string, timeout time.Duration) error {
	_, err := e.loc.SelectOption(playwright.SelectOptionValues{
		ValuesOrLabels: &[]string{value},
	}, playwright.LocatorSelectOptionOptions{Timeout: ms(timeout)})
	return mapError(err)
}

// SetInputFiles - reads the files and hands their bytes to the input
func (e *Element) SetInputFiles(paths []string, timeout time.Duration) error {
	files := make([]playwright.InputFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, playwright.InputFile{
			Name:     filepath.Base(path),
			MimeType: mimetype.Detect(data).String(),
			Buffer:   data,
		})
	}
	return mapError(e.loc.SetInputFiles(files, playwright.LocatorSetInputFilesOptions{Timeout: ms(timeout)}))
}

func (e *Element) Text() (string, error) {
	text, err := e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(1000)})
	return text, mapError(err)
}

func (e *Element) InputValue() (string, error) {
	value, err := e.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: playwright.Float(1000)})
	return value, mapError(err)
}

func (e *Element) Describe() string {
	return e.desc
}
