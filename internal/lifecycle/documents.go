package lifecycle

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/blob"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/legal"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/validation"
)

// DocumentKey derives the storage key of an upload. The same inputs always
// give the same key, so re-uploading a file name overwrites it.
func DocumentKey(companyID, documentType, fileName string) string {
	return "companies/" + sanitizeSegment(companyID) + "/" + sanitizeSegment(documentType) + "/" + sanitizeSegment(path.Base(strings.ReplaceAll(fileName, "\\", "/")))
}

func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

func companyKeyPrefix(companyID string) string {
	return "companies/" + sanitizeSegment(companyID) + "/"
}

// documentAccess checks the caller may act on the documents of company.
// Without ownership enforcement only the profile permission is checked.
func (c *Controller) documentAccess(ctx context.Context, op string, id Identity, action gate.Action, company *models.Company) error {
	if !c.opts.DocumentOwnership {
		return c.authorize(ctx, op, id, action, ResourceDocument, nil)
	}
	return c.authorize(ctx, op, id, action, ResourceDocument, company)
}

// UploadRequest asks for a reference to upload one file.
type UploadRequest struct {
	CompanyID    string `json:"company_id"`
	DocumentType string `json:"document_type" validate:"max=64"`
	FileName     string `json:"file_name" validate:"max=255"`
	ContentType  string `json:"content_type" validate:"max=255"`
}

// UploadReference is where the client sends the file, and the key to
// report back once it is stored.
type UploadReference struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RequestUploadReference issues an upload reference. Only the company owner
// or an admin may upload, whatever the ownership option says.
func (c *Controller) RequestUploadReference(ctx context.Context, req UploadRequest) (*UploadReference, error) {
	const op = "lifecycle.request_upload_reference"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	v := validation.Struct(req)
	validation.Required("company_id", req.CompanyID, v)
	validation.Required("document_type", req.DocumentType, v)
	validation.Required("file_name", req.FileName, v)
	validation.Required("content_type", req.ContentType, v)
	if err := check(op, v); err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, op, id, gate.ActionUpload, ResourceDocument, company); err != nil {
		return nil, err
	}

	key := DocumentKey(company.ID, req.DocumentType, req.FileName)
	ref, err := c.blobs.UploadURL(ctx, key, req.ContentType)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return &UploadReference{UploadURL: ref.URL, Key: key, ExpiresAt: ref.ExpiresAt}, nil
}

// DocumentInput describes a file already stored under Key.
type DocumentInput struct {
	CompanyID string `json:"company_id"`
	Type      string `json:"type" validate:"max=64"`
	Name      string `json:"name" validate:"max=255"`
	Key       string `json:"key" validate:"max=1024"`
	URL       string `json:"url" validate:"max=2048"`
	Size      *int64 `json:"size" validate:"omitempty,gte=0"`
	MimeType  string `json:"mime_type" validate:"max=255"`
}

// RecordUploadedDocument stores the document row in pending status.
func (c *Controller) RecordUploadedDocument(ctx context.Context, in DocumentInput) (*models.Document, error) {
	const op = "lifecycle.record_document"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	v := validation.Struct(in)
	validation.Required("company_id", in.CompanyID, v)
	validation.Required("type", in.Type, v)
	validation.Required("name", in.Name, v)
	validation.Required("key", in.Key, v)
	if err := check(op, v); err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := c.documentAccess(ctx, op, id, gate.ActionCreate, company); err != nil {
		return nil, err
	}
	if c.opts.DocumentOwnership && !strings.HasPrefix(in.Key, companyKeyPrefix(company.ID)) {
		return nil, newValidationError(op, "key", validation.CodeInvalid)
	}

	doc := &models.Document{
		CompanyID:  company.ID,
		Type:       in.Type,
		Name:       in.Name,
		Key:        in.Key,
		URL:        in.URL,
		Size:       in.Size,
		MimeType:   in.MimeType,
		Status:     models.DocumentPending,
		UploadedAt: c.now(),
	}
	if doc.URL == "" {
		doc.URL = c.blobs.PublicURL(doc.Key)
	}
	if err := c.documents.Create(ctx, doc); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}

	c.observer.DocumentUploaded(doc.Type)
	c.log.InfoContext(ctx, "document uploaded", "company_id", company.ID, "document_id", doc.ID, "type", doc.Type)
	c.publish(ctx, events.Event{Type: events.DocumentUploaded, CompanyID: company.ID, DocumentID: doc.ID, ActorID: id.UserID})

	if c.opts.AutoAdvanceOnUpload && company.Status == models.StatusDocumentsPending {
		c.advanceIfComplete(ctx, company, id.UserID)
	}
	return doc, nil
}

// advanceIfComplete moves the company to documents_uploaded once every
// required type has a document. Failures are logged: the upload itself
// already succeeded.
func (c *Controller) advanceIfComplete(ctx context.Context, company *models.Company, actor uint) {
	docs, err := c.documents.ListByCompany(ctx, company.ID)
	if err != nil {
		c.log.WarnContext(ctx, "auto advance skipped", "company_id", company.ID, "error", err)
		return
	}
	have := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.Status != models.DocumentRejected {
			have[d.Type] = true
		}
	}
	for _, req := range legal.RequiredDocuments(company.LegalStructure) {
		if !have[req.Type] {
			return
		}
	}
	from := company.Status
	company.Status = models.StatusDocumentsUploaded
	if err := c.companies.Save(ctx, company); err != nil {
		c.log.WarnContext(ctx, "auto advance failed", "company_id", company.ID, "error", err)
		company.Status = from
		return
	}
	c.transitioned(ctx, company, from, actor)
}

// ListDocuments returns the company's documents, oldest first.
func (c *Controller) ListDocuments(ctx context.Context, companyID string) ([]models.Document, error) {
	const op = "lifecycle.list_documents"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	if c.opts.DocumentOwnership {
		company, err := c.loadCompany(ctx, op, companyID)
		if err != nil {
			return nil, err
		}
		if err := c.documentAccess(ctx, op, id, gate.ActionList, company); err != nil {
			return nil, err
		}
	} else {
		if err := checkID(op, "company_id", companyID); err != nil {
			return nil, err
		}
		if err := c.documentAccess(ctx, op, id, gate.ActionList, nil); err != nil {
			return nil, err
		}
	}
	docs, err := c.documents.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return docs, nil
}

// loadDocument fetches a document that must exist for op to continue.
func (c *Controller) loadDocument(ctx context.Context, op, id string) (*models.Document, error) {
	if err := checkID(op, "document_id", id); err != nil {
		return nil, err
	}
	doc, err := c.documents.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.WrapError(models.ErrNotFound, op, nil)
		}
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return doc, nil
}

// documentForCaller loads a document and checks the caller may act on it.
func (c *Controller) documentForCaller(ctx context.Context, op, documentID string, action gate.Action) (*models.Document, Identity, error) {
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, Identity{}, err
	}
	doc, err := c.loadDocument(ctx, op, documentID)
	if err != nil {
		return nil, Identity{}, err
	}
	var company *models.Company
	if c.opts.DocumentOwnership {
		if company, err = c.loadCompany(ctx, op, doc.CompanyID); err != nil {
			return nil, Identity{}, err
		}
	}
	if err := c.documentAccess(ctx, op, id, action, company); err != nil {
		return nil, Identity{}, err
	}
	return doc, id, nil
}

// RequestDownloadReference issues a download reference for a document.
func (c *Controller) RequestDownloadReference(ctx context.Context, documentID string) (*blob.Reference, error) {
	const op = "lifecycle.request_download_reference"
	doc, _, err := c.documentForCaller(ctx, op, documentID, gate.ActionView)
	if err != nil {
		return nil, err
	}
	ref, err := c.blobs.DownloadURL(ctx, doc.Key)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	return &ref, nil
}

// DeleteDocument removes the stored file and then the row. When the file
// cannot be removed the row is kept so the call can be retried.
func (c *Controller) DeleteDocument(ctx context.Context, documentID string) error {
	const op = "lifecycle.delete_document"
	doc, id, err := c.documentForCaller(ctx, op, documentID, gate.ActionDelete)
	if err != nil {
		return err
	}
	if err := c.blobs.Delete(ctx, doc.Key); err != nil {
		c.log.WarnContext(ctx, "document blob delete failed", "document_id", doc.ID, "key", doc.Key, "error", err)
		return models.WrapError(models.ErrDependency, op, err)
	}
	if err := c.documents.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.WrapError(models.ErrNotFound, op, nil)
		}
		return models.WrapError(models.ErrDependency, op, err)
	}
	c.log.InfoContext(ctx, "document deleted", "company_id", doc.CompanyID, "document_id", doc.ID)
	c.publish(ctx, events.Event{Type: events.DocumentDeleted, CompanyID: doc.CompanyID, DocumentID: doc.ID, ActorID: id.UserID})
	return nil
}

// VerifyDocument records an admin decision. Earlier decisions are
// overwritten.
func (c *Controller) VerifyDocument(ctx context.Context, documentID string, status models.DocumentStatus, notes *string) (*models.Document, error) {
	const op = "lifecycle.verify_document"
	admin, err := c.requireAdmin(ctx, op, gate.ActionVerify, ResourceDocument)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("status", string(status), v)
	validation.OneOf("status", status, []models.DocumentStatus{models.DocumentApproved, models.DocumentRejected}, v)
	if notes != nil && len(*notes) > 10000 {
		v.Add("notes", validation.CodeTooLong)
	}
	if err := check(op, v); err != nil {
		return nil, err
	}
	doc, err := c.loadDocument(ctx, op, documentID)
	if err != nil {
		return nil, err
	}

	adminID := admin.UserID
	doc.Status = status
	if notes != nil {
		doc.Notes = *notes
	}
	doc.VerifiedAt = timePtr(c.now())
	doc.VerifiedBy = &adminID
	if err := c.documents.Save(ctx, doc); err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}

	c.observer.DocumentVerified(string(status))
	c.log.InfoContext(ctx, "document verified", "document_id", doc.ID, "status", status, "admin_id", adminID)
	c.publish(ctx, events.Event{Type: events.DocumentVerified, CompanyID: doc.CompanyID, DocumentID: doc.ID, To: string(status), ActorID: adminID})
	return doc, nil
}

// ChecklistItem is one required document and where it stands.
type ChecklistItem struct {
	Type       string                 `json:"type"`
	Label      string                 `json:"label"`
	Uploaded   bool                   `json:"uploaded"`
	DocumentID string                 `json:"document_id,omitempty"`
	Status     *models.DocumentStatus `json:"status,omitempty"`
}

// Checklist lists the required documents of the company's structure with
// the most recent upload of each type.
func (c *Controller) Checklist(ctx context.Context, companyID string) ([]ChecklistItem, error) {
	const op = "lifecycle.checklist"
	id, err := c.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	company, err := c.loadCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, op, id, gate.ActionView, ResourceCompany, company); err != nil {
		return nil, err
	}
	docs, err := c.documents.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, models.WrapError(models.ErrDependency, op, err)
	}
	latest := make(map[string]models.Document, len(docs))
	for _, d := range docs {
		latest[d.Type] = d
	}

	required := legal.RequiredDocuments(company.LegalStructure)
	out := make([]ChecklistItem, 0, len(required))
	for _, r := range required {
		item := ChecklistItem{Type: r.Type, Label: r.Label}
		if d, ok := latest[r.Type]; ok {
			status := d.Status
			item.Uploaded = true
			item.DocumentID = d.ID
			item.Status = &status
		}
		out = append(out, item)
	}
	return out, nil
}
