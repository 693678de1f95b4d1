package pages

import (
	"context"

	"portal_automation/application/ui"
	"portal_automation/domain/entities"
)

var (
	serviceRequestsHeading = entities.NewTarget("Service Requests heading",
		entities.CSS("h1.page-title"),
		entities.Role("heading", "Service Requests"),
	)
	newRequestButton = entities.NewTarget("New Service Request button",
		entities.ID("new-request-btn"),
		entities.Role("button", "New Service Request"),
	)
	requestForm = entities.NewTarget("service request form",
		entities.ID("request-form"),
		entities.CSS("form.request-form"),
	)
	categoryDropdown = dropdown("Category", "category-filter")
	categorySelected = selectedValue("Category", "category-filter")
	subjectInput     = entities.NewTarget("Subject field",
		entities.ID("subject"),
		entities.Attr("input", "name", "subject"),
		entities.Label("Subject"),
	)
	descriptionInput = entities.NewTarget("Description field",
		entities.ID("description"),
		entities.Attr("textarea", "name", "description"),
		entities.Label("Description"),
	)
	attachmentsInput = entities.NewTarget("attachments input",
		entities.ID("attachments"),
		entities.Attr("input", "type", "file"),
	)
	attachmentPreviews = entities.NewTarget("attachment previews",
		entities.CSS(".attachment-preview .preview-item"),
	)
	uploadError = entities.NewTarget("upload error",
		entities.CSS(".upload-error"),
		entities.CSS(".invalid-feedback"),
	)
	termsCheckbox = ui.Checkbox{
		Name: "terms checkbox",
		Input: entities.NewTarget("terms input",
			entities.ID("terms"),
			entities.Attr("input", "name", "terms"),
		),
		Label: entities.NewTarget("terms label",
			entities.Attr("label", "for", "terms"),
			entities.Text("I agree to the terms"),
		),
	}
	submitRequestButton = entities.NewTarget("Submit Request button",
		entities.ID("submit-request"),
		entities.Role("button", "Submit Request"),
	)
	requestRows = entities.NewTarget("service request rows",
		entities.CSS("#requests-table tbody tr"),
	)
	firstRequestLink = entities.NewTarget("first service request link",
		entities.CSS("#requests-table tbody tr:first-child a.request-link"),
		entities.XPath("(//table[@id='requests-table']//tbody/tr)[1]//a"),
	)
	requestModal = entities.NewTarget("service request details",
		entities.ID("request-details"),
		entities.CSS(".modal.show"),
	)
	requestModalTitle = entities.NewTarget("service request details title",
		entities.CSS("#request-details .modal-title"),
		entities.CSS(".modal.show .modal-title"),
	)
)

// ServiceRequestsPage is the customer list and form of service requests
type ServiceRequestsPage struct {
	d *ui.Driver
}

func NewServiceRequestsPage(d *ui.Driver) *ServiceRequestsPage {
	return &ServiceRequestsPage{d: d}
}

func (p *ServiceRequestsPage) Open(ctx context.Context) error {
	if err := open(ctx, p.d, ServiceRequestsPath, serviceRequestsHeading); err != nil {
		return err
	}
	waitLoaded(ctx, p.d)
	return nil
}

// StartNewRequest opens the request form
func (p *ServiceRequestsPage) StartNewRequest(ctx context.Context) error {
	return p.d.Executor.Composite(ctx, entities.ActionClick, "new service request",
		ui.Step{Name: "open form", Run: func(ctx context.Context) error {
			return p.d.Executor.Click(ctx, p.d.Page, newRequestButton)
		}},
		ui.Step{Name: "wait form", Run: func(ctx context.Context) error {
			lookup := p.d.Resolver.Resolve(ctx, p.d.Page, requestForm)
			if !lookup.Found() {
				return entities.ErrElementNotFound
			}
			return nil
		}},
	)
}

func (p *ServiceRequestsPage) SelectCategory(ctx context.Context, category string) error {
	return p.d.Executor.PickOption(ctx, p.d.Page, categoryDropdown, category)
}

func (p *ServiceRequestsPage) Category(ctx context.Context) string {
	return p.d.Verifier.Text(ctx, p.d.Page, categorySelected)
}

func (p *ServiceRequestsPage) FillSubject(ctx context.Context, subject string) error {
	return p.d.Executor.Fill(ctx, p.d.Page, subjectInput, subject)
}

func (p *ServiceRequestsPage) Subject(ctx context.Context) string {
	return p.d.Verifier.Value(ctx, p.d.Page, subjectInput)
}

func (p *ServiceRequestsPage) FillDescription(ctx context.Context, description string) error {
	return p.d.Executor.Fill(ctx, p.d.Page, descriptionInput, description)
}

// AttachFiles hands files to the hidden file input. The portal decides
// which ones it accepts; see PreviewCount and UploadError.
func (p *ServiceRequestsPage) AttachFiles(ctx context.Context, paths ...string) error {
	return p.d.Executor.Upload(ctx, p.d.Page, attachmentsInput, paths...)
}

// PreviewCount returns the number of accepted attachments
func (p *ServiceRequestsPage) PreviewCount(ctx context.Context) int {
	return p.d.Verifier.CountWithin(ctx, p.d.Page, attachmentPreviews, inlineTimeout)
}

// UploadError returns the rejection message of the last upload, or ""
func (p *ServiceRequestsPage) UploadError(ctx context.Context) string {
	return p.d.Verifier.TextWithin(ctx, p.d.Page, uploadError, inlineTimeout)
}

// AcceptTerms ticks the custom terms checkbox
func (p *ServiceRequestsPage) AcceptTerms(ctx context.Context) error {
	return p.d.Executor.SetChecked(ctx, p.d.Page, termsCheckbox, true)
}

// Submit sends the form and returns the confirmation toast
func (p *ServiceRequestsPage) Submit(ctx context.Context) (string, error) {
	if err := p.d.Executor.Click(ctx, p.d.Page, submitRequestButton); err != nil {
		return "", err
	}
	waitLoaded(ctx, p.d)
	return p.ToastMessage(ctx), nil
}

func (p *ServiceRequestsPage) ToastMessage(ctx context.Context) string {
	return toast(ctx, p.d)
}

func (p *ServiceRequestsPage) RowCount(ctx context.Context) int {
	return p.d.Verifier.Count(ctx, p.d.Page, requestRows)
}

// OpenFirstRequest opens the details modal of the newest request
func (p *ServiceRequestsPage) OpenFirstRequest(ctx context.Context) error {
	return p.d.Executor.Composite(ctx, entities.ActionClick, "open service request",
		ui.Step{Name: "click request", Run: func(ctx context.Context) error {
			return p.d.Executor.Click(ctx, p.d.Page, firstRequestLink)
		}},
		ui.Step{Name: "wait modal", Run: func(ctx context.Context) error {
			if !p.IsModalOpen(ctx) {
				return entities.ErrElementNotFound
			}
			return nil
		}},
	)
}

// ModalTitle returns the title of the open details modal, or ""
func (p *ServiceRequestsPage) ModalTitle(ctx context.Context) string {
	return p.d.Verifier.Text(ctx, p.d.Page, requestModalTitle)
}

func (p *ServiceRequestsPage) IsModalOpen(ctx context.Context) bool {
	return p.d.Verifier.IsVisible(ctx, p.d.Page, requestModal)
}

// CloseModal dismisses the details modal with Escape and waits for it to go
func (p *ServiceRequestsPage) CloseModal(ctx context.Context) error {
	if err := p.d.Executor.PressKey(ctx, p.d.Page, "Escape"); err != nil {
		return err
	}
	if !p.d.Verifier.IsHidden(ctx, p.d.Page, requestModal, 0) {
		return &entities.ActionError{
			Action: entities.ActionPress,
			Target: requestModal.Name,
			Err:    entities.ErrStateUnchanged,
		}
	}
	return nil
}
