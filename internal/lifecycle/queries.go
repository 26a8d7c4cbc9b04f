package lifecycle

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/store"
	"github.com/diewo77/jurigo/validation"
)

// GetCompany returns the company or nil when it does not exist.
func (c *Controller) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	const op = "lifecycle.get_company"
	company, err := c.loadCompany(ctx, op, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if _, err := c.wizardAccess(ctx, op, company, gate.ActionView); err != nil {
		return nil, err
	}
	return company, nil
}

// CompaniesByEmail lists applications started with a contact email, for
// lookups before an account exists. Companies linked to an account are
// only listed to their owner and to admins.
func (c *Controller) CompaniesByEmail(ctx context.Context, email string) ([]models.Company, error) {
	const op = "lifecycle.companies_by_email"
	email = strings.TrimSpace(email)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	if err := check(op, v); err != nil {
		return nil, err
	}
	found, err := c.companies.ListByEmail(ctx, email)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	id, _ := c.optionalCaller(ctx)
	if id.IsAdmin() {
		return found, nil
	}
	out := found[:0]
	for _, company := range found {
		if !company.Owned() || company.OwnedBy(id.UserID) {
			out = append(out, company)
		}
	}
	return out, nil
}

// CompaniesForCurrentUser lists the companies owned by the caller.
func (c *Controller) CompaniesForCurrentUser(ctx context.Context) ([]models.Company, error) {
	const op = "lifecycle.companies_for_user"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, op, id, gate.ActionList, ResourceCompany, nil); err != nil {
		return nil, err
	}
	out, err := c.companies.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return out, nil
}

// AllCompanies lists every application for the admin dashboard.
func (c *Controller) AllCompanies(ctx context.Context, f store.ListFilter) ([]models.Company, error) {
	const op = "lifecycle.all_companies"
	if _, err := c.requireAdmin(ctx, op, gate.ActionList, ResourceDashboard); err != nil {
		return nil, err
	}
	if f.Status != "" && !validStatus(f.Status) {
		return nil, newValidationError(op, "status", validation.CodeInvalidChoice)
	}
	out, err := c.companies.List(ctx, f)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return out, nil
}

// Stats is the admin dashboard summary. Only four statuses are counted.
// DocumentsToVerify counts uploaded documents still awaiting a decision.
type Stats struct {
	TotalCompanies    int64 `json:"total_companies"`
	TotalUsers        int64 `json:"total_users"`
	PendingPayment    int64 `json:"pending_payment"`
	DocumentsPending  int64 `json:"documents_pending"`
	UnderReview       int64 `json:"under_review"`
	Completed         int64 `json:"completed"`
	DocumentsToVerify int64 `json:"documents_to_verify"`
}

func (c *Controller) Stats(ctx context.Context) (Stats, error) {
	const op = "lifecycle.stats"
	if _, err := c.requireAdmin(ctx, op, gate.ActionView, ResourceDashboard); err != nil {
		return Stats{}, err
	}
	var s Stats
	var err error
	if s.TotalCompanies, err = c.companies.Count(ctx); err != nil {
		return Stats{}, models.WrapError(models.ErrDependency, op, err)
	}
	if s.TotalUsers, err = c.users.Count(ctx); err != nil {
		return Stats{}, models.WrapError(models.ErrDependency, op, err)
	}
	byStatus, err := c.companies.CountByStatus(ctx)
	if err != nil {
		return Stats{}, models.WrapError(models.ErrDependency, op, err)
	}
	s.PendingPayment = byStatus[models.StatusPendingPayment]
	s.DocumentsPending = byStatus[models.StatusDocumentsPending]
	s.UnderReview = byStatus[models.StatusUnderReview]
	s.Completed = byStatus[models.StatusCompleted]
	if s.DocumentsToVerify, err = c.documents.CountByStatus(ctx, models.DocumentPending); err != nil {
		return Stats{}, models.WrapError(models.ErrDependency, op, err)
	}
	return s, nil
}

// AddNote appends an admin annotation to a company.
func (c *Controller) AddNote(ctx context.Context, companyID, content string) (*models.AdminNote, error) {
	const op = "lifecycle.add_note"
	admin, err := c.requireAdmin(ctx, op, gate.ActionCreate, ResourceNote)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	v := validation.Violations{}
	validation.Required("content", content, v)
	if len(content) > 10000 {
		v.Add("content", validation.CodeTooLong)
	}
	if err := check(op, v); err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	note := &models.AdminNote{CompanyID: company.ID, AdminID: admin.UserID, Content: content}
	if err := c.notes.Create(ctx, note); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	c.log.InfoContext(ctx, "admin note added", "company_id", company.ID, "admin_id", admin.UserID)
	c.publish(ctx, events.Event{Type: events.CompanyNoteAdded, CompanyID: company.ID, ActorID: admin.UserID})
	return note, nil
}

// Notes lists a company's annotations, oldest first.
func (c *Controller) Notes(ctx context.Context, companyID string) ([]models.AdminNote, error) {
	const op = "lifecycle.notes"
	if _, err := c.requireAdmin(ctx, op, gate.ActionList, ResourceNote); err != nil {
		return nil, err
	}
	if err := checkID(op, "company_id", companyID); err != nil {
		return nil, err
	}
	out, err := c.notes.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return out, nil
}
