package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
	"portal_automation/domain/interfaces"
)

// DateField is one of the date range filters of the subscriptions list
type DateField string

const (
	CreatedDate DateField = "Created"
	RenewalDate DateField = "Renewal"
	ExpiryDate  DateField = "Expiry"
)

// dateFieldOrder is the top-to-bottom order of the pickers, used only by
// the positional fallback candidate
var dateFieldOrder = map[DateField]int{
	CreatedDate: 0,
	RenewalDate: 1,
	ExpiryDate:  2,
}

// DateLayout is how the range pickers expect dates to be typed
const DateLayout = "02/01/2006"

var (
	subscriptionsHeading = entities.NewTarget("Subscriptions heading",
		entities.CSS("h1.page-title"),
		entities.Role("heading", "Subscriptions"),
	)
	serverDropdown = dropdown("Server List", "server-filter")
	serverSelected = selectedValue("Server List", "server-filter")
	intervalSelect = entities.NewTarget("Interval select",
		entities.ID("interval"),
		entities.Attr("select", "name", "interval"),
		entities.Label("Interval"),
	)
	searchButton = entities.NewTarget("Search button",
		entities.ID("search-btn"),
		entities.Role("button", "Search"),
		entities.ExactText("Search"),
	)
	subscriptionRows = entities.NewTarget("subscription rows",
		entities.CSS("#subscriptions-table tbody tr"),
		entities.CSS("table.dataTable tbody tr:not(.dataTables_empty)"),
	)
	subscriptionsEmpty = entities.NewTarget("subscriptions empty state",
		entities.CSS("#subscriptions-empty"),
		entities.Text("No records found"),
	)
	subscriptionsSummary = entities.NewTarget("subscriptions pagination summary",
		entities.ID("subscriptions-info"),
		entities.CSS(".dataTables_info"),
	)
	firstRowRate = entities.NewTarget("rate of first subscription",
		entities.CSS("#subscriptions-table tbody tr:first-child td.rate"),
		entities.XPath("(//table[@id='subscriptions-table']//tbody/tr)[1]/td[contains(@class,'rate')]"),
	)
	loginAsCustomerButton = entities.NewTarget("Login as Customer button",
		entities.CSS("#subscriptions-table tbody tr:first-child .btn-login-as"),
		entities.Role("button", "Login as Customer"),
	)
	cancelSubscriptionButton = entities.NewTarget("Cancel subscription button",
		entities.CSS("#subscriptions-table tbody tr:first-child .btn-cancel"),
		entities.Role("button", "Cancel Subscription"),
	).AsDestructive()
)

// dateRangeInput resolves a picker by its label; the positional candidate
// is the last resort and logs a warning when it wins
func dateRangeInput(field DateField) entities.Target {
	return entities.NewTarget(string(field)+" date range",
		entities.NearLabel(string(field), "input"),
		entities.Attr("input", "name", strings.ToLower(string(field))+"_range"),
		entities.Nth(entities.CSS("input.date-range"), dateFieldOrder[field]),
	)
}

// SubscriptionsPage is the admin list of customer subscriptions
type SubscriptionsPage struct {
	d       *ui.Driver
	session interfaces.Session
}

func NewSubscriptionsPage(d *ui.Driver, session interfaces.Session) *SubscriptionsPage {
	return &SubscriptionsPage{d: d, session: session}
}

func (p *SubscriptionsPage) Open(ctx context.Context) error {
	if err := open(ctx, p.d, SubscriptionsPath, subscriptionsHeading); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

// SelectServer picks a server in the Server List dropdown
func (p *SubscriptionsPage) SelectServer(ctx context.Context, server string) error {
	return p.d.Executor.PickOption(ctx, p.d.Page, serverDropdown, server)
}

// SelectedServer returns the label the Server List dropdown shows
func (p *SubscriptionsPage) SelectedServer(ctx context.Context) string {
	return p.d.Verifier.Text(ctx, p.d.Page, serverSelected)
}

// SetInterval selects an interval by value or label
func (p *SubscriptionsPage) SetInterval(ctx context.Context, interval string) error {
	return p.d.Executor.SelectNative(ctx, p.d.Page, intervalSelect, interval)
}

// Interval returns the selected interval value
func (p *SubscriptionsPage) Interval(ctx context.Context) string {
	return p.d.Verifier.Value(ctx, p.d.Page, intervalSelect)
}

// SetDateRange types a range into the picker labelled field and confirms it
func (p *SubscriptionsPage) SetDateRange(ctx context.Context, field DateField, from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%s range: end %s is before start %s", field, to.Format(DateLayout), from.Format(DateLayout))
	}
	target := dateRangeInput(field)
	value := from.Format(DateLayout) + " - " + to.Format(DateLayout)
	return p.d.Executor.Composite(ctx, entities.ActionFill, target.Name,
		ui.Step{Name: "type range", Run: func(ctx context.Context) error {
			return p.d.Executor.Fill(ctx, p.d.Page, target, value)
		}},
		ui.Step{Name: "apply", Run: func(ctx context.Context) error {
			return p.d.Executor.PressKey(ctx, p.d.Page, "Enter")
		}},
	)
}

// DateRange returns the text of the picker labelled field
func (p *SubscriptionsPage) DateRange(ctx context.Context, field DateField) string {
	return p.d.Verifier.Value(ctx, p.d.Page, dateRangeInput(field))
}

// Search applies the filters and waits for the table to refresh
func (p *SubscriptionsPage) Search(ctx context.Context) error {
	if err := p.d.Executor.Click(ctx, p.d.Page, searchButton); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

// RowCount returns the number of rows on the current page of the table
func (p *SubscriptionsPage) RowCount(ctx context.Context) int {
	return p.d.Verifier.Count(ctx, p.d.Page, subscriptionRows)
}

// RecordTotal returns the total from the pagination summary
func (p *SubscriptionsPage) RecordTotal(ctx context.Context) int {
	return p.d.Verifier.RecordTotal(ctx, p.d.Page, subscriptionsSummary)
}

// HasRowsOrEmptyState reports whether rows (true) or the empty state
// (false) rendered; ok is false when neither did
func (p *SubscriptionsPage) HasRowsOrEmptyState(ctx context.Context) (hasRows, ok bool) {
	return rowsOrEmpty(ctx, p.d, subscriptionRows, subscriptionsEmpty)
}

// RateOfFirstRow returns the price of the first subscription
func (p *SubscriptionsPage) RateOfFirstRow(ctx context.Context) (float64, error) {
	return p.d.Verifier.Amount(ctx, p.d.Page, firstRowRate)
}

// LoginAsCustomer impersonates the customer of the first row. The portal
// opens the customer view in a new tab, which is returned.
func (p *SubscriptionsPage) LoginAsCustomer(ctx context.Context) (*CustomerViewPage, error) {
	timeout := p.d.Resolver.Policy().Timeout
	page, err := p.session.ExpectNewPage(ctx, timeout, func() error {
		return p.d.Executor.Click(ctx, p.d.Page, loginAsCustomerButton)
	})
	if err != nil {
		return nil, fmt.Errorf("login as customer: %w", err)
	}
	return NewCustomerViewPage(p.d.On(page)), nil
}

// ToastMessage returns the current toast, or "" when none shows up
func (p *SubscriptionsPage) ToastMessage(ctx context.Context) string {
	return toast(ctx, p.d)
}

// CancelSubscription cancels the first subscription. Refused unless the
// run allows destructive actions.
func (p *SubscriptionsPage) CancelSubscription(ctx context.Context) (string, error) {
	if err := p.d.Executor.Click(ctx, p.d.Page, cancelSubscriptionButton); err != nil {
		return "", err
	}
	return p.ToastMessage(ctx), nil
}
