package pages

import (
	"context"
	"fmt"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

var (
	customerEmail = entities.NewTarget("email field",
		entities.ID("email"),
		entities.Attr("input", "type", "email"),
		entities.Label("Email"),
	)
	customerPassword = entities.NewTarget("password field",
		entities.ID("password"),
		entities.Attr("input", "type", "password"),
		entities.Label("Password"),
	)
	customerLogIn = entities.NewTarget("Log in button",
		entities.Attr("button", "type", "submit"),
		entities.Role("button", "Log in"),
	)
	customerProfileMenu = entities.NewTarget("profile menu",
		entities.CSS(".profile-menu"),
		entities.Text("My Account"),
	)
	customerLoginError = entities.NewTarget("login error",
		entities.CSS(".login-error"),
		entities.Role("alert", ""),
	)
)

// CustomerLoginPage is the customer portal sign-in form
type CustomerLoginPage struct {
	d *ui.Driver
}

func NewCustomerLoginPage(d *ui.Driver) *CustomerLoginPage {
	return &CustomerLoginPage{d: d}
}

func (p *CustomerLoginPage) Open(ctx context.Context) error {
	return open(ctx, p.d, CustomerLoginPath, customerEmail)
}

func (p *CustomerLoginPage) Login(ctx context.Context, email, password string) error {
	err := p.d.Executor.Composite(ctx, entities.ActionClick, "customer login",
		ui.Step{Name: "email", Run: func(ctx context.Context) error {
			return p.d.Executor.Fill(ctx, p.d.Page, customerEmail, email)
		}},
		ui.Step{Name: "password", Run: func(ctx context.Context) error {
			return p.d.Executor.Fill(ctx, p.d.Page, customerPassword, password)
		}},
		ui.Step{Name: "submit", Run: func(ctx context.Context) error {
			return p.d.Executor.Click(ctx, p.d.Page, customerLogIn)
		}},
	)
	if err != nil {
		return err
	}

	if !p.IsLoggedIn(ctx) {
		if msg := p.d.Verifier.TextWithin(ctx, p.d.Page, customerLoginError, inlineTimeout); msg != "" {
			return fmt.Errorf("customer login rejected: %s", msg)
		}
		return fmt.Errorf("customer login: %w", entities.ErrStateUnchanged)
	}
	return nil
}

func (p *CustomerLoginPage) IsLoggedIn(ctx context.Context) bool {
	return p.d.Verifier.IsVisible(ctx, p.d.Page, customerProfileMenu)
}
