// Package lifecycle owns the incorporation workflow: company intake and
// status progression, document upload and verification, admin notes and
// dashboard statistics.
//
// The controller never reads ambient state. The caller's identity, the
// stores, the blob service and the event publisher are injected through
// Deps, which keeps it runnable against an in-memory database in tests.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/blob"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/store"
	"github.com/diewo77/jurigo/validation"
)

// Identity is the resolved caller of an operation.
type Identity struct {
	UserID uint
	Role   models.Role
}

func (i Identity) Authenticated() bool { return i.UserID != 0 }
func (i Identity) IsAdmin() bool       { return i.UserID != 0 && i.Role == models.RoleAdmin }

// IdentityGate resolves the session carried by ctx. ok is false for
// anonymous callers.
type IdentityGate interface {
	Resolve(ctx context.Context) (id Identity, ok bool)
}

// Authorizer decides whether id may perform action on resource.
// *gate.HybridGate[Identity] satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, id Identity, action gate.Action, resourceType string, resource any) error
}

type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	Get(ctx context.Context, id string) (*models.Company, error)
	Save(ctx context.Context, c *models.Company) error
	ListByEmail(ctx context.Context, email string) ([]models.Company, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Company, error)
	List(ctx context.Context, f store.ListFilter) ([]models.Company, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.CompanyStatus]int64, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Document, error)
	Save(ctx context.Context, d *models.Document) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status models.DocumentStatus) (int64, error)
}

type NoteStore interface {
	Create(ctx context.Context, n *models.AdminNote) error
	ListByCompany(ctx context.Context, companyID string) ([]models.AdminNote, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// BlobService issues references to document content.
type BlobService interface {
	UploadURL(ctx context.Context, key, contentType string) (blob.Reference, error)
	DownloadURL(ctx context.Context, key string) (blob.Reference, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Observer is notified of completed state changes, typically for metrics.
type Observer interface {
	CompanyCreated(structure string)
	CompanyTransitioned(from, to string)
	DocumentUploaded(docType string)
	DocumentVerified(status string)
	EventPublishFailed(eventType string)
}

type nopObserver struct{}

func (nopObserver) CompanyCreated(string)              {}
func (nopObserver) CompanyTransitioned(string, string) {}
func (nopObserver) DocumentUploaded(string)            {}
func (nopObserver) DocumentVerified(string)            {}
func (nopObserver) EventPublishFailed(string)          {}

// Options toggles the hardening rules of the workflow.
type Options struct {
	// StrictTransitions rejects status changes outside the transition table.
	StrictTransitions bool
	// DocumentOwnership requires owner-or-admin for every document operation.
	DocumentOwnership bool
	// AutoAdvanceOnUpload moves documents_pending to documents_uploaded once
	// every required document type has been uploaded.
	AutoAdvanceOnUpload bool
}

type Deps struct {
	Companies CompanyStore
	Documents DocumentStore
	Notes     NoteStore
	Users     UserCounter
	Blobs     BlobService
	Identity  IdentityGate
	Gate      Authorizer
	Events    events.Publisher
	Observer  Observer
	Logger    *slog.Logger
	Clock     func() time.Time
	Options   Options
}

// Controller runs lifecycle operations. It is safe for concurrent use.
type Controller struct {
	companies CompanyStore
	documents DocumentStore
	notes     NoteStore
	users     UserCounter
	blobs     BlobService
	identity  IdentityGate
	gate      Authorizer
	events    events.Publisher
	observer  Observer
	log       *slog.Logger
	now       func() time.Time
	opts      Options
}

func New(d Deps) *Controller {
	c := &Controller{
		companies: d.Companies,
		documents: d.Documents,
		notes:     d.Notes,
		users:     d.Users,
		blobs:     d.Blobs,
		identity:  d.Identity,
		gate:      d.Gate,
		events:    d.Events,
		observer:  d.Observer,
		log:       d.Logger,
		now:       d.Clock,
		opts:      d.Options,
	}
	if c.events == nil {
		c.events = events.Noop{}
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Options returns the rules the controller was built with.
func (c *Controller) Options() Options { return c.opts }

// caller returns the authenticated identity or ErrUnauthorized.
func (c *Controller) caller(ctx context.Context, op string) (Identity, error) {
	if c.identity == nil {
		return Identity{}, models.WrapError(models.ErrUnauthorized, op, nil)
	}
	id, ok := c.identity.Resolve(ctx)
	if !ok || !id.Authenticated() {
		return Identity{}, models.WrapError(models.ErrUnauthorized, op, nil)
	}
	return id, nil
}

// optionalCaller returns the identity if the request carries one.
func (c *Controller) optionalCaller(ctx context.Context) (Identity, bool) {
	if c.identity == nil {
		return Identity{}, false
	}
	id, ok := c.identity.Resolve(ctx)
	return id, ok && id.Authenticated()
}

func (c *Controller) authorize(ctx context.Context, op string, id Identity, action gate.Action, resourceType string, resource any) error {
	if err := c.gate.Authorize(ctx, id, action, resourceType, resource); err != nil {
		return models.WrapError(models.ErrUnauthorized, op, err)
	}
	return nil
}

// requireAdmin resolves the caller and checks it holds the permission for
// action on resourceType, which only the admin profile grants.
func (c *Controller) requireAdmin(ctx context.Context, op string, action gate.Action, resourceType string) (Identity, error) {
	id, err := c.caller(ctx, op)
	if err != nil {
		return Identity{}, err
	}
	if err := c.authorize(ctx, op, id, action, resourceType, nil); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// publish emits e. Failures are logged and counted, never returned.
func (c *Controller) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = c.now()
	}
	if err := c.events.Publish(ctx, e); err != nil {
		c.observer.EventPublishFailed(e.Type)
		c.log.WarnContext(ctx, "event publish failed", "type", e.Type, "company_id", e.CompanyID, "error", err)
	}
}

// checkID rejects an id that is not a UUID before it reaches the store.
func checkID(op, field, id string) error {
	v := validation.Violations{}
	validation.Required(field, id, v)
	validation.UUID(field, id, v)
	return check(op, v)
}

// loadCompany fetches a company that must exist for op to continue.
func (c *Controller) loadCompany(ctx context.Context, op, id string) (*models.Company, error) {
	if err := checkID(op, "company_id", id); err != nil {
		return nil, err
	}
	company, err := c.companies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, op, nil)
		}
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return company, nil
}

func timePtr(t time.Time) *time.Time { return &t }
