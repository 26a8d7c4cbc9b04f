package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/legal"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/validation"
)

// Resource types known to the authorization gate.
const (
	ResourceCompany   = "company"
	ResourceDocument  = "document"
	ResourceNote      = "note"
	ResourceDashboard = "dashboard"
)

// CompanyInput is the intake wizard payload.
type CompanyInput struct {
	Name                string                `json:"name" validate:"max=255"`
	LegalStructure      models.LegalStructure `json:"legal_structure"`
	ActivityDomain      models.ActivityDomain `json:"activity_domain"`
	ActivityDescription string                `json:"activity_description" validate:"max=2000"`
	ContactEmail        string                `json:"contact_email" validate:"max=255"`
	ContactPhone        string                `json:"contact_phone" validate:"max=50"`
	Address             string                `json:"address" validate:"max=500"`
	PostalCode          string                `json:"postal_code" validate:"max=20"`
	City                string                `json:"city" validate:"max=100"`
	CapitalAmount       *int                  `json:"capital_amount"`

	PresidentFirstName   string `json:"president_first_name" validate:"max=100"`
	PresidentLastName    string `json:"president_last_name" validate:"max=100"`
	PresidentBirthDate   string `json:"president_birth_date" validate:"max=20"`
	PresidentBirthPlace  string `json:"president_birth_place" validate:"max=255"`
	PresidentNationality string `json:"president_nationality" validate:"max=100"`
	PresidentAddress     string `json:"president_address" validate:"max=500"`

	Associates []models.Associate `json:"associates" validate:"omitempty,dive"`
}

func (in CompanyInput) validate() validation.Violations {
	v := validation.Struct(in)
	validation.Required("name", in.Name, v)
	validation.Required("legal_structure", string(in.LegalStructure), v)
	validation.OneOf("legal_structure", in.LegalStructure, models.LegalStructures, v)
	validation.Required("activity_domain", string(in.ActivityDomain), v)
	validation.OneOf("activity_domain", in.ActivityDomain, models.ActivityDomains, v)
	validation.Required("contact_email", in.ContactEmail, v)
	validation.Email("contact_email", in.ContactEmail, v)
	if in.CapitalAmount != nil {
		checkCapital(in.LegalStructure, *in.CapitalAmount, v)
	}
	return v
}

func checkCapital(s models.LegalStructure, amount int, v validation.Violations) {
	if amount < 0 || (legal.Valid(s) && amount < legal.MinCapital(s)) {
		v.Add("capital_amount", validation.CodeOutOfRange)
	}
}

// CreateCompany starts a new application in draft at step 1. No session is
// needed; a signed-in client becomes the owner right away.
func (c *Controller) CreateCompany(ctx context.Context, in CompanyInput) (*models.Company, error) {
	const op = "lifecycle.create_company"
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	if err := check(op, in.validate()); err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:                 strings.TrimSpace(in.Name),
		LegalStructure:       in.LegalStructure,
		ActivityDomain:       in.ActivityDomain,
		ActivityDescription:  in.ActivityDescription,
		Status:               models.StatusDraft,
		CurrentStep:          models.FirstStep,
		ContactEmail:         in.ContactEmail,
		ContactPhone:         in.ContactPhone,
		Address:              in.Address,
		PostalCode:           in.PostalCode,
		City:                 in.City,
		CapitalAmount:        in.CapitalAmount,
		PresidentFirstName:   in.PresidentFirstName,
		PresidentLastName:    in.PresidentLastName,
		PresidentBirthDate:   in.PresidentBirthDate,
		PresidentBirthPlace:  in.PresidentBirthPlace,
		PresidentNationality: in.PresidentNationality,
		PresidentAddress:     in.PresidentAddress,
		Associates:           in.Associates,
	}
	var actor uint
	if id, ok := c.optionalCaller(ctx); ok && !id.IsAdmin() {
		uid := id.UserID
		company.UserID = &uid
		actor = uid
	}
	if err := c.companies.Create(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}

	c.observer.CompanyCreated(string(company.LegalStructure))
	c.log.InfoContext(ctx, "company created", "company_id", company.ID, "structure", company.LegalStructure)
	c.publish(ctx, events.Event{Type: events.CompanyCreated, CompanyID: company.ID, To: string(company.Status), ActorID: actor})
	return company, nil
}

// CompanyPatch carries the fields to change. Nil fields are left alone.
type CompanyPatch struct {
	Name                *string                `json:"name,omitempty" validate:"omitempty,max=255"`
	LegalStructure      *models.LegalStructure `json:"legal_structure,omitempty"`
	ActivityDomain      *models.ActivityDomain `json:"activity_domain,omitempty"`
	ActivityDescription *string                `json:"activity_description,omitempty" validate:"omitempty,max=2000"`
	Status              *models.CompanyStatus  `json:"status,omitempty"`
	CurrentStep         *int                   `json:"current_step,omitempty"`

	ContactEmail  *string `json:"contact_email,omitempty" validate:"omitempty,max=255"`
	ContactPhone  *string `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
	PostalCode    *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	City          *string `json:"city,omitempty" validate:"omitempty,max=100"`
	CapitalAmount *int    `json:"capital_amount,omitempty"`

	PresidentFirstName   *string `json:"president_first_name,omitempty" validate:"omitempty,max=100"`
	PresidentLastName    *string `json:"president_last_name,omitempty" validate:"omitempty,max=100"`
	PresidentBirthDate   *string `json:"president_birth_date,omitempty" validate:"omitempty,max=20"`
	PresidentBirthPlace  *string `json:"president_birth_place,omitempty" validate:"omitempty,max=255"`
	PresidentNationality *string `json:"president_nationality,omitempty" validate:"omitempty,max=100"`
	PresidentAddress     *string `json:"president_address,omitempty" validate:"omitempty,max=500"`

	Associates *[]models.Associate `json:"associates,omitempty" validate:"omitempty,dive"`
}

func (p CompanyPatch) validate(current *models.Company) validation.Violations {
	v := validation.Struct(p)
	if p.Name != nil {
		validation.Required("name", *p.Name, v)
	}
	if p.LegalStructure != nil && *p.LegalStructure != current.LegalStructure {
		v.Add("legal_structure", validation.CodeImmutable)
	}
	if p.ActivityDomain != nil {
		validation.Required("activity_domain", string(*p.ActivityDomain), v)
		validation.OneOf("activity_domain", *p.ActivityDomain, models.ActivityDomains, v)
	}
	if p.Status != nil && !validStatus(*p.Status) {
		v.Add("status", validation.CodeInvalidChoice)
	}
	if p.CurrentStep != nil {
		validation.RangeInt("current_step", *p.CurrentStep, models.FirstStep, models.LastStep, v)
	}
	if p.ContactEmail != nil {
		validation.Required("contact_email", *p.ContactEmail, v)
		validation.Email("contact_email", *p.ContactEmail, v)
	}
	if p.CapitalAmount != nil {
		checkCapital(current.LegalStructure, *p.CapitalAmount, v)
	}
	return v
}

func (p CompanyPatch) apply(c *models.Company) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.ActivityDescription, p.ActivityDescription)
	set(&c.ContactEmail, p.ContactEmail)
	set(&c.ContactPhone, p.ContactPhone)
	set(&c.Address, p.Address)
	set(&c.PostalCode, p.PostalCode)
	set(&c.City, p.City)
	set(&c.PresidentFirstName, p.PresidentFirstName)
	set(&c.PresidentLastName, p.PresidentLastName)
	set(&c.PresidentBirthDate, p.PresidentBirthDate)
	set(&c.PresidentBirthPlace, p.PresidentBirthPlace)
	set(&c.PresidentNationality, p.PresidentNationality)
	set(&c.PresidentAddress, p.PresidentAddress)
	if p.ActivityDomain != nil {
		c.ActivityDomain = *p.ActivityDomain
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CurrentStep != nil {
		c.CurrentStep = *p.CurrentStep
	}
	if p.CapitalAmount != nil {
		amount := *p.CapitalAmount
		c.CapitalAmount = &amount
	}
	if p.Associates != nil {
		c.Associates = *p.Associates
	}
}

// wizardAccess guards operations the intake wizard performs. A company
// without an owner is reachable by anyone holding its id; once linked it
// requires the owner or an admin.
func (c *Controller) wizardAccess(ctx context.Context, op string, company *models.Company, action gate.Action) (Identity, error) {
	id, _ := c.optionalCaller(ctx)
	if !company.Owned() {
		return id, nil
	}
	if !id.Authenticated() {
		return Identity{}, models.WrapError(models.ErrUnauthorized, op, nil)
	}
	return id, c.authorize(ctx, op, id, action, ResourceCompany, company)
}

// UpdateCompany applies patch to the company. Visitors and owners may only
// edit a draft and never its status; after submission only admins write.
// Admin status writes are accepted as given unless strict transitions are
// enabled.
func (c *Controller) UpdateCompany(ctx context.Context, id string, patch CompanyPatch) (*models.Company, error) {
	const op = "lifecycle.update_company"
	company, err := c.loadCompany(ctx, op, id)
	if err != nil {
		return nil, err
	}
	actor, err := c.wizardAccess(ctx, op, company, gate.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if company.Status != models.StatusDraft {
			return nil, models.WrapError(models.ErrUnauthorized, op, fmt.Errorf("%w: company is %s", gate.ErrForbidden, company.Status))
		}
		if patch.Status != nil {
			return nil, models.WrapError(models.ErrUnauthorized, op, fmt.Errorf("%w: status is set by admins", gate.ErrForbidden))
		}
	}
	if err := check(op, patch.validate(company)); err != nil {
		return nil, err
	}
	from := company.Status
	if patch.Status != nil {
		if err := c.checkTransition(op, from, *patch.Status); err != nil {
			return nil, err
		}
	}

	patch.apply(company)
	if err := c.companies.Save(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}

	if company.Status != from {
		c.transitioned(ctx, company, from, actor.UserID)
	} else {
		c.publish(ctx, events.Event{Type: events.CompanyUpdated, CompanyID: company.ID, ActorID: actor.UserID})
	}
	return company, nil
}

// SubmitCompany closes the wizard: status pending_payment, step 5 and a
// fresh submission time. Submitting again only refreshes the time. Past
// pending_payment only admins may submit.
func (c *Controller) SubmitCompany(ctx context.Context, id string) (*models.Company, error) {
	const op = "lifecycle.submit_company"
	company, err := c.loadCompany(ctx, op, id)
	if err != nil {
		return nil, err
	}
	actor, err := c.wizardAccess(ctx, op, company, gate.ActionUpdate)
	if err != nil {
		return nil, err
	}
	from := company.Status
	if !actor.IsAdmin() && from != models.StatusDraft && from != models.StatusPendingPayment {
		return nil, models.WrapError(models.ErrUnauthorized, op, fmt.Errorf("%w: company is %s", gate.ErrForbidden, from))
	}
	if err := c.checkTransition(op, from, models.StatusPendingPayment); err != nil {
		return nil, err
	}

	company.Status = models.StatusPendingPayment
	company.CurrentStep = models.LastStep
	company.SubmittedAt = timePtr(c.now())
	if err := c.companies.Save(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}

	c.log.InfoContext(ctx, "company submitted", "company_id", company.ID, "from", from)
	c.publish(ctx, events.Event{Type: events.CompanySubmitted, CompanyID: company.ID, From: string(from), To: string(company.Status), ActorID: actor.UserID})
	if from != company.Status {
		c.observer.CompanyTransitioned(string(from), string(company.Status))
	}
	return company, nil
}

// LinkCompanyToUser sets the owning account. Clients may only link to
// themselves, and only while the company is unowned or already theirs.
// Admins may link anyone and replace an earlier owner.
func (c *Controller) LinkCompanyToUser(ctx context.Context, companyID string, userID uint) (*models.Company, error) {
	const op = "lifecycle.link_company"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, newValidationError(op, "user_id", validation.CodeRequired)
	}
	if err := c.authorize(ctx, op, id, gate.ActionLink, ResourceCompany, nil); err != nil {
		return nil, err
	}
	if userID != id.UserID && !id.IsAdmin() {
		return nil, models.WrapError(models.ErrUnauthorized, op, gate.ErrForbidden)
	}
	company, err := c.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	previous := company.GetUserID()
	if company.Owned() && previous != id.UserID && !id.IsAdmin() {
		return nil, models.WrapError(models.ErrUnauthorized, op, fmt.Errorf("%w: company has another owner", gate.ErrForbidden))
	}

	company.UserID = &userID
	if err := c.companies.Save(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	if previous != 0 && previous != userID {
		c.log.WarnContext(ctx, "company owner replaced", "company_id", company.ID, "previous_user_id", previous, "user_id", userID)
	}
	c.publish(ctx, events.Event{Type: events.CompanyLinked, CompanyID: company.ID, ActorID: id.UserID})
	return company, nil
}

// UpdateCompanyStatus is the admin status change. Moving to completed
// stamps the completion time on every call.
func (c *Controller) UpdateCompanyStatus(ctx context.Context, companyID string, status models.CompanyStatus) (*models.Company, error) {
	const op = "lifecycle.update_company_status"
	admin, err := c.requireAdmin(ctx, op, gate.ActionTransition, ResourceCompany)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("status", string(status), v)
	validation.OneOf("status", status, models.CompanyStatuses, v)
	if err := check(op, v); err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	from := company.Status
	if err := c.checkTransition(op, from, status); err != nil {
		return nil, err
	}

	company.Status = status
	if status == models.StatusCompleted {
		company.CompletedAt = timePtr(c.now())
	}
	if err := c.companies.Save(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	c.transitioned(ctx, company, from, admin.UserID)
	return company, nil
}

// PaymentInput is a confirmed payment reported by the payment provider.
type PaymentInput struct {
	CompanyID string `json:"company_id" validate:"required"`
	Reference string `json:"reference" validate:"required,max=255"`
	// Amount in cents. Zero means the price of the legal structure.
	Amount int64 `json:"amount" validate:"gte=0"`
}

// RecordPayment marks the company paid. It is driven by the payment
// webhook, which authenticates the provider instead of a user session.
func (c *Controller) RecordPayment(ctx context.Context, in PaymentInput) (*models.Company, error) {
	const op = "lifecycle.record_payment"
	if err := check(op, validation.Struct(in)); err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, in.CompanyID)
	if err != nil {
		return nil, err
	}
	from := company.Status
	if err := c.checkTransition(op, from, models.StatusPaid); err != nil {
		return nil, err
	}

	amount := in.Amount
	if amount == 0 {
		amount = legal.Price(company.LegalStructure)
	}
	company.Status = models.StatusPaid
	company.PaymentIntentID = in.Reference
	company.Amount = &amount
	company.PaidAt = timePtr(c.now())
	if err := c.companies.Save(ctx, company); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	c.publish(ctx, events.Event{Type: events.CompanyPaid, CompanyID: company.ID, From: string(from), To: string(company.Status)})
	if from != company.Status {
		c.observer.CompanyTransitioned(string(from), string(company.Status))
	}
	c.log.InfoContext(ctx, "payment recorded", "company_id", company.ID, "reference", in.Reference, "amount", amount)
	return company, nil
}

func (c *Controller) transitioned(ctx context.Context, company *models.Company, from models.CompanyStatus, actor uint) {
	c.observer.CompanyTransitioned(string(from), string(company.Status))
	c.log.InfoContext(ctx, "company status changed",
		"company_id", company.ID, "from", from, "to", company.Status, "actor_id", actor)
	c.publish(ctx, events.Event{
		Type:      events.CompanyStatusChanged,
		CompanyID: company.ID,
		From:      string(from),
		To:        string(company.Status),
		ActorID:   actor,
	})
}
