package pages

import (
	"context"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

var customerViewName = entities.NewTarget("impersonated customer name",
	entities.ID("customer-name"),
	entities.CSS(".customer-header h1"),
)

// CustomerViewPage is the tab the admin portal opens when impersonating
type CustomerViewPage struct {
	d *ui.Driver
}

func NewCustomerViewPage(d *ui.Driver) *CustomerViewPage {
	return &CustomerViewPage{d: d}
}

// CustomerName returns the name in the header, or "" if it never renders
func (p *CustomerViewPage) CustomerName(ctx context.Context) string {
	return p.d.Verifier.Text(ctx, p.d.Page, customerViewName)
}

// URL returns the address of the tab
func (p *CustomerViewPage) URL() string {
	info, err := p.d.Page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *CustomerViewPage) Close() error {
	return p.d.Page.Close()
}
