package pages

import (
	"context"
	"fmt"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

var (
	adminUsername = entities.NewTarget("username field",
		entities.ID("username"),
		entities.Attr("input", "name", "username"),
		entities.Label("Username"),
	)
	adminPassword = entities.NewTarget("password field",
		entities.ID("password"),
		entities.Attr("input", "type", "password"),
		entities.Label("Password"),
	)
	adminSignIn = entities.NewTarget("Sign in button",
		entities.ID("login-button"),
		entities.Attr("button", "type", "submit"),
		entities.Role("button", "Sign in"),
	)
	adminUserMenu = entities.NewTarget("user menu",
		entities.ID("user-menu"),
		entities.CSS(".navbar .user-menu"),
	)
	adminLoginError = entities.NewTarget("login error",
		entities.ID("login-error"),
		entities.CSS(".alert-danger"),
	)
)

// AdminLoginPage is the admin portal sign-in form
type AdminLoginPage struct {
	d *ui.Driver
}

func NewAdminLoginPage(d *ui.Driver) *AdminLoginPage {
	return &AdminLoginPage{d: d}
}

func (p *AdminLoginPage) Open(ctx context.Context) error {
	return open(ctx, p.d, AdminLoginPath, adminUsername)
}

// Login signs in and waits for the user menu
func (p *AdminLoginPage) Login(ctx context.Context, username, password string) error {
	err := p.d.Executor.Composite(ctx, entities.ActionClick, "admin login",
		ui.Step{Name: "username", Run: func(ctx context.Context) error {
			return p.d.Executor.Fill(ctx, p.d.Page, adminUsername, username)
		}},
		ui.Step{Name: "password", Run: func(ctx context.Context) error {
			return p.d.Executor.Fill(ctx, p.d.Page, adminPassword, password)
		}},
		ui.Step{Name: "submit", Run: func(ctx context.Context) error {
			return p.d.Executor.Click(ctx, p.d.Page, adminSignIn)
		}},
	)
	if err != nil {
		return err
	}

	if !p.IsLoggedIn(ctx) {
		if msg := p.d.Verifier.TextWithin(ctx, p.d.Page, adminLoginError, inlineTimeout); msg != "" {
			return fmt.Errorf("admin login rejected: %s", msg)
		}
		return fmt.Errorf("admin login: %w", entities.ErrStateUnchanged)
	}
	return nil
}

// IsLoggedIn reports whether the user menu is shown
func (p *AdminLoginPage) IsLoggedIn(ctx context.Context) bool {
	return p.d.Verifier.IsVisible(ctx, p.d.Page, adminUserMenu)
}
