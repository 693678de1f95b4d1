package scenarios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portal_automation/application/pages"
	"portal_automation/domain/entities"
	"portal_automation/infrastructure/fixtures"
)

// Catalog returns every scenario the CLI knows, in run order
func Catalog() []Scenario {
	return []Scenario{
		adminSubscriptions(),
		adminTechnicalDashboard(),
		customerServiceRequests(),
		customerUploadLimits(),
	}
}

// Select picks scenarios by name, keeping catalog order. No names selects
// the whole catalog.
func Select(names []string) ([]Scenario, error) {
	all := Catalog()
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []Scenario
	for _, sc := range all {
		if wanted[sc.Name] {
			selected = append(selected, sc)
			delete(wanted, sc.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for _, name := range names {
			if wanted[name] {
				unknown = append(unknown, name)
			}
		}
		return nil, fmt.Errorf("unknown scenario(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

var loginAdmin = Step{Name: "log in", Run: func(ctx context.Context, env *Env) error {
	login := pages.NewAdminLoginPage(env.Driver)
	if err := login.Open(ctx); err != nil {
		return err
	}
	return login.Login(ctx, env.Portal.Username, env.Portal.Password)
}}

var loginCustomer = Step{Name: "log in", Run: func(ctx context.Context, env *Env) error {
	login := pages.NewCustomerLoginPage(env.Driver)
	if err := login.Open(ctx); err != nil {
		return err
	}
	return login.Login(ctx, env.Portal.Username, env.Portal.Password)
}}

func subscriptions(env *Env) *pages.SubscriptionsPage {
	return pages.NewSubscriptionsPage(env.Driver, env.Session)
}

func adminSubscriptions() Scenario {
	return Scenario{
		Name:        "admin-subscriptions",
		Portal:      PortalAdmin,
		Description: "Filter, search and inspect the subscriptions list",
		Steps: []Step{
			loginAdmin,
			{Name: "open subscriptions", Run: func(ctx context.Context, env *Env) error {
				return subscriptions(env).Open(ctx)
			}},
			{Name: "filter by server", Run: func(ctx context.Context, env *Env) error {
				if env.Params.Server == "" {
					return fmt.Errorf("%w: no server configured", ErrSkipped)
				}
				subs := subscriptions(env)
				if err := subs.SelectServer(ctx, env.Params.Server); err != nil {
					return err
				}
				return expectEqual("selected server", env.Params.Server, subs.SelectedServer(ctx))
			}},
			{Name: "interval round trip", Run: func(ctx context.Context, env *Env) error {
				subs := subscriptions(env)
				if err := subs.SetInterval(ctx, env.Params.Interval); err != nil {
					return err
				}
				return expectEqual("interval", env.Params.Interval, subs.Interval(ctx))
			}},
			{Name: "renewal date range", Run: func(ctx context.Context, env *Env) error {
				subs := subscriptions(env)
				to := time.Now()
				from := to.AddDate(0, -1, 0)
				if err := subs.SetDateRange(ctx, pages.RenewalDate, from, to); err != nil {
					return err
				}
				want := from.Format(pages.DateLayout) + " - " + to.Format(pages.DateLayout)
				return expectEqual("renewal date range", want, subs.DateRange(ctx, pages.RenewalDate))
			}},
			{Name: "search", Run: func(ctx context.Context, env *Env) error {
				subs := subscriptions(env)
				if err := subs.Search(ctx); err != nil {
					return err
				}
				hasRows, ok := subs.HasRowsOrEmptyState(ctx)
				if err := expect(ok, "neither rows nor an empty state appeared"); err != nil {
					return err
				}
				if hasRows {
					return expect(subs.RecordTotal(ctx) > 0, "rows are shown but the record total is 0")
				}
				return nil
			}},
			{Name: "first row rate", Optional: true, Run: func(ctx context.Context, env *Env) error {
				rate, err := subscriptions(env).RateOfFirstRow(ctx)
				if err != nil {
					return err
				}
				return expect(rate > 0, "rate of first row is %v", rate)
			}},
			{Name: "login as customer", Optional: true, Run: func(ctx context.Context, env *Env) error {
				view, err := subscriptions(env).LoginAsCustomer(ctx)
				if err != nil {
					return err
				}
				defer view.Close()
				return expect(view.CustomerName(ctx) != "", "customer view shows no customer name")
			}},
			{Name: "cancel subscription", Optional: true, Run: func(ctx context.Context, env *Env) error {
				msg, err := subscriptions(env).CancelSubscription(ctx)
				if errors.Is(err, entities.ErrBlocked) {
					return fmt.Errorf("%w: %v", ErrSkipped, err)
				}
				if err != nil {
					return err
				}
				return expect(msg != "", "no confirmation after cancelling")
			}},
		},
	}
}

func adminTechnicalDashboard() Scenario {
	return Scenario{
		Name:        "admin-technical-dashboard",
		Portal:      PortalAdmin,
		Description: "Filter the technical dashboard and read its metrics",
		Steps: []Step{
			loginAdmin,
			{Name: "open dashboard", Run: func(ctx context.Context, env *Env) error {
				return pages.NewTechnicalDashboardPage(env.Driver).Open(ctx)
			}},
			{Name: "interval round trip", Run: func(ctx context.Context, env *Env) error {
				dash := pages.NewTechnicalDashboardPage(env.Driver)
				if err := dash.SetInterval(ctx, env.Params.DashboardInterval); err != nil {
					return err
				}
				return expectEqual("interval", env.Params.DashboardInterval, dash.Interval(ctx))
			}},
			{Name: "filter by server", Run: func(ctx context.Context, env *Env) error {
				if env.Params.Server == "" {
					return fmt.Errorf("%w: no server configured", ErrSkipped)
				}
				return pages.NewTechnicalDashboardPage(env.Driver).SelectServer(ctx, env.Params.Server)
			}},
			{Name: "rows or empty state", Run: func(ctx context.Context, env *Env) error {
				_, ok := pages.NewTechnicalDashboardPage(env.Driver).HasRowsOrEmptyState(ctx)
				return expect(ok, "neither rows nor an empty state appeared")
			}},
			{Name: "active subscriptions metric", Optional: true, Run: func(ctx context.Context, env *Env) error {
				n := pages.NewTechnicalDashboardPage(env.Driver).MetricValue(ctx, "Active Subscriptions")
				return expect(n > 0, "active subscriptions metric is %d", n)
			}},
			{Name: "refresh", Run: func(ctx context.Context, env *Env) error {
				return pages.NewTechnicalDashboardPage(env.Driver).Refresh(ctx)
			}},
		},
	}
}

func customerServiceRequests() Scenario {
	var subject string

	return Scenario{
		Name:        "customer-service-requests",
		Portal:      PortalCustomer,
		Description: "Raise a service request and open its details",
		Steps: []Step{
			loginCustomer,
			{Name: "open service requests", Run: func(ctx context.Context, env *Env) error {
				return pages.NewServiceRequestsPage(env.Driver).Open(ctx)
			}},
			{Name: "start new request", Run: func(ctx context.Context, env *Env) error {
				return pages.NewServiceRequestsPage(env.Driver).StartNewRequest(ctx)
			}},
			{Name: "choose category", Run: func(ctx context.Context, env *Env) error {
				if env.Params.Category == "" {
					return fmt.Errorf("%w: no category configured", ErrSkipped)
				}
				requests := pages.NewServiceRequestsPage(env.Driver)
				if err := requests.SelectCategory(ctx, env.Params.Category); err != nil {
					return err
				}
				return expectEqual("category", env.Params.Category, requests.Category(ctx))
			}},
			{Name: "fill details", Run: func(ctx context.Context, env *Env) error {
				requests := pages.NewServiceRequestsPage(env.Driver)
				subject = "Automated check " + time.Now().Format("2006-01-02 15:04:05")
				if err := requests.FillSubject(ctx, subject); err != nil {
					return err
				}
				if err := expectEqual("subject", subject, requests.Subject(ctx)); err != nil {
					return err
				}
				return requests.FillDescription(ctx, "Raised by the portal automation suite.")
			}},
			{Name: "accept terms", Run: func(ctx context.Context, env *Env) error {
				return pages.NewServiceRequestsPage(env.Driver).AcceptTerms(ctx)
			}},
			{Name: "submit", Run: func(ctx context.Context, env *Env) error {
				msg, err := pages.NewServiceRequestsPage(env.Driver).Submit(ctx)
				if err != nil {
					return err
				}
				return expect(strings.Contains(strings.ToLower(msg), "success"), "unexpected confirmation %q", msg)
			}},
			{Name: "open request details", Run: func(ctx context.Context, env *Env) error {
				requests := pages.NewServiceRequestsPage(env.Driver)
				if err := requests.OpenFirstRequest(ctx); err != nil {
					return err
				}
				title := requests.ModalTitle(ctx)
				return expect(strings.Contains(title, subject), "details title %q does not mention %q", title, subject)
			}},
			{Name: "close details", Run: func(ctx context.Context, env *Env) error {
				return pages.NewServiceRequestsPage(env.Driver).CloseModal(ctx)
			}},
		},
	}
}

func customerUploadLimits() Scenario {
	return Scenario{
		Name:        "customer-upload-limits",
		Portal:      PortalCustomer,
		Description: "Check the attachment count and size limits",
		Steps: []Step{
			loginCustomer,
			{Name: "file count limit", Run: func(ctx context.Context, env *Env) error {
				requests := pages.NewServiceRequestsPage(env.Driver)
				if err := openForm(ctx, requests); err != nil {
					return err
				}

				specs := make([]fixtures.Spec, 0, env.Limits.MaxFiles+1)
				kinds := []fixtures.Kind{fixtures.PNG, fixtures.JPEG, fixtures.PDF}
				for i := 0; i <= env.Limits.MaxFiles; i++ {
					specs = append(specs, fixtures.Spec{
						Name: fmt.Sprintf("count-%d", i+1),
						Kind: kinds[i%len(kinds)],
						Size: 16 << 10,
					})
				}
				files, err := env.Fixtures.CreateAll(specs...)
				if err != nil {
					return err
				}
				if err := requests.AttachFiles(ctx, files...); err != nil {
					return err
				}

				if err := expectEqual("accepted attachments", env.Limits.MaxFiles, requests.PreviewCount(ctx)); err != nil {
					return err
				}
				return expect(requests.UploadError(ctx) != "", "no error for %d files", len(files))
			}},
			{Name: "file size limit", Run: func(ctx context.Context, env *Env) error {
				requests := pages.NewServiceRequestsPage(env.Driver)
				if err := openForm(ctx, requests); err != nil {
					return err
				}

				atLimit, err := env.Fixtures.Create(fixtures.Spec{Name: "size-at-limit", Kind: fixtures.PDF, Size: env.Limits.MaxBytes})
				if err != nil {
					return err
				}
				overLimit, err := env.Fixtures.Create(fixtures.Spec{Name: "size-over-limit", Kind: fixtures.JPEG, Size: env.Limits.MaxBytes + 1})
				if err != nil {
					return err
				}

				if err := requests.AttachFiles(ctx, atLimit); err != nil {
					return err
				}
				if err := expectEqual("accepted attachments", 1, requests.PreviewCount(ctx)); err != nil {
					return err
				}
				if msg := requests.UploadError(ctx); msg != "" {
					return expect(false, "file of exactly %d bytes rejected: %s", env.Limits.MaxBytes, msg)
				}

				if err := requests.AttachFiles(ctx, overLimit); err != nil {
					return err
				}
				if err := expectEqual("accepted attachments", 1, requests.PreviewCount(ctx)); err != nil {
					return err
				}
				return expect(requests.UploadError(ctx) != "", "file of %d bytes accepted", env.Limits.MaxBytes+1)
			}},
		},
	}
}

// openForm reloads the list so the form starts without attachments
func openForm(ctx context.Context, requests *pages.ServiceRequestsPage) error {
	if err := requests.Open(ctx); err != nil {
		return err
	}
	return requests.StartNewRequest(ctx)
}
