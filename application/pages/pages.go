// Package pages holds the page objects of the admin and customer portals.
// Each page object names its targets once, with candidates ordered from the
// most stable selector to the most generic, and expresses every user-facing
// operation as resolve, act, verify through a ui.Driver.
package pages

import (
	"context"
	"fmt"
	"time"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

// Paths relative to the portal base URL
const (
	AdminLoginPath         = "/login"
	SubscriptionsPath      = "/subscriptions"
	TechnicalDashboardPath = "/technical-dashboard"
	CustomerLoginPath      = "/login"
	ServiceRequestsPath    = "/service-requests"
)

// Short waits for elements that may legitimately never appear
const (
	toastTimeout  = 5 * time.Second
	inlineTimeout = 2 * time.Second
	// loading overlays that never show up count as done after this
	loadingTimeout = 15 * time.Second
)

var toastMessage = entities.NewTarget("toast message",
	entities.CSS(".toast-message"),
	entities.CSS(".toast .toast-body"),
	entities.Role("alert", ""),
)

var loadingOverlay = entities.NewTarget("loading overlay",
	entities.CSS(".loading-overlay"),
	entities.CSS(".dataTables_processing"),
)

// open navigates and waits for the landmark of the page
func open(ctx context.Context, d *ui.Driver, path string, landmark entities.Target) error {
	if err := d.Page.Navigate(ctx, path); err != nil {
		return err
	}
	lookup := d.Resolver.Resolve(ctx, d.Page, landmark)
	if !lookup.Found() {
		return &entities.ActionError{
			Action: entities.ActionNavigate,
			Target: path,
			Tried:  lookup.Tried,
			Err:    fmt.Errorf("%s did not render: %w", landmark.Name, entities.ErrElementNotFound),
		}
	}
	return nil
}

// waitLoaded waits for the table refresh overlay to go away
func waitLoaded(ctx context.Context, d *ui.Driver) {
	d.Page.WaitForIdle(d.Resolver.Policy().Timeout)
	d.Verifier.IsHidden(ctx, d.Page, loadingOverlay, loadingTimeout)
}

// toast returns the text of a toast if one shows up shortly, or ""
func toast(ctx context.Context, d *ui.Driver) string {
	return d.Verifier.TextWithin(ctx, d.Page, toastMessage, toastTimeout)
}

// rowsOrEmpty reports whether the table shows rows (true) or the empty
// state (false); ok is false when neither rendered
func rowsOrEmpty(ctx context.Context, d *ui.Driver, rows, empty entities.Target) (hasRows, ok bool) {
	index, ok := d.Verifier.FirstVisible(ctx, d.Page, 0, rows, empty)
	if !ok {
		return false, false
	}
	return index == 0, true
}

// dropdown builds a custom dropdown whose toggle and panel live in the
// container with the given id
func dropdown(name, containerID string) ui.Dropdown {
	return ui.Dropdown{
		Name: name,
		Toggle: entities.NewTarget(name+" toggle",
			entities.CSS(fmt.Sprintf("#%s .dropdown-toggle", containerID)),
			entities.NearLabel(name, "button"),
		),
		Panel: entities.NewTarget(name+" panel",
			entities.CSS(fmt.Sprintf("#%s .dropdown-menu", containerID)),
			entities.CSS(fmt.Sprintf("#%s [role=\"listbox\"]", containerID)),
		),
	}
}

// selectedValue is the label a custom dropdown shows for its selection
func selectedValue(name, containerID string) entities.Target {
	return entities.NewTarget(name+" selection",
		entities.CSS(fmt.Sprintf("#%s .dropdown-toggle .selected-value", containerID)),
		entities.CSS(fmt.Sprintf("#%s .dropdown-toggle", containerID)),
	)
}
