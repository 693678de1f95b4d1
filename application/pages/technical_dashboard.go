package pages

import (
	"context"
	"fmt"
	"strings"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

var (
	dashboardHeading = entities.NewTarget("Technical Dashboard heading",
		entities.CSS("h1.page-title"),
		entities.Role("heading", "Technical Dashboard"),
	)
	dashboardServerDropdown = dropdown("Server List", "dashboard-server-filter")
	dashboardIntervalDrop   = dropdown("Interval", "dashboard-interval-filter")
	dashboardInterval       = selectedValue("Interval", "dashboard-interval-filter")
	dashboardRows           = entities.NewTarget("server rows",
		entities.CSS("#servers-table tbody tr"),
	)
	dashboardEmpty = entities.NewTarget("dashboard empty state",
		entities.CSS("#servers-empty"),
		entities.Text("No data available"),
	)
	refreshButton = entities.NewTarget("Refresh button",
		entities.ID("refresh-btn"),
		entities.Role("button", "Refresh"),
	)
)

// metricValue locates the value of a metric card by its caption
func metricValue(name string) entities.Target {
	name = strings.TrimSpace(name)
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return entities.NewTarget(name+" metric",
		entities.CSS(fmt.Sprintf(".metric-card[data-metric=%q] .metric-value", slug)),
		entities.XPath(fmt.Sprintf(
			"//*[normalize-space(text())=%s]/ancestor::*[contains(@class,'metric-card')][1]//*[contains(@class,'metric-value')]",
			entities.XPathLiteral(name),
		)),
	)
}

// TechnicalDashboardPage shows per-server metrics
type TechnicalDashboardPage struct {
	d *ui.Driver
}

func NewTechnicalDashboardPage(d *ui.Driver) *TechnicalDashboardPage {
	return &TechnicalDashboardPage{d: d}
}

func (p *TechnicalDashboardPage) Open(ctx context.Context) error {
	if err := open(ctx, p.d, TechnicalDashboardPath, dashboardHeading); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

func (p *TechnicalDashboardPage) SelectServer(ctx context.Context, server string) error {
	if err := p.d.Executor.PickOption(ctx, p.d.Page, dashboardServerDropdown, server); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

// SetInterval picks an interval in the custom Interval dropdown
func (p *TechnicalDashboardPage) SetInterval(ctx context.Context, interval string) error {
	if err := p.d.Executor.PickOption(ctx, p.d.Page, dashboardIntervalDrop, interval); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

// Interval returns the label of the selected interval
func (p *TechnicalDashboardPage) Interval(ctx context.Context) string {
	return p.d.Verifier.Text(ctx, p.d.Page, dashboardInterval)
}

// MetricValue returns the number shown on a metric card; 0 when the card is
// missing or shows no number
func (p *TechnicalDashboardPage) MetricValue(ctx context.Context, name string) int {
	return p.d.Verifier.CountValue(ctx, p.d.Page, metricValue(name))
}

func (p *TechnicalDashboardPage) HasRowsOrEmptyState(ctx context.Context) (hasRows, ok bool) {
	return rowsOrEmpty(ctx, p.d, dashboardRows, dashboardEmpty)
}

func (p *TechnicalDashboardPage) Refresh(ctx context.Context) error {
	if err := p.d.Executor.Click(ctx, p.d.Page, refreshButton); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}
