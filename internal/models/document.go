package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is one uploaded artifact. The parent company owns it exclusively.
type Document struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID string `gorm:"type:uuid;not null;index" json:"company_id"`

	Type     string `gorm:"size:64;not null" json:"type"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Key      string `gorm:"size:1024;not null" json:"key"`
	URL      string `gorm:"size:2048;not null" json:"url"`
	Size     *int64 `json:"size,omitempty"`
	MimeType string `gorm:"size:255" json:"mime_type,omitempty"`

	Status     DocumentStatus `gorm:"size:16;not null;default:pending" json:"status"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	UploadedAt time.Time      `gorm:"not null" json:"uploaded_at"`
	VerifiedAt *time.Time     `json:"verified_at,omitempty"`
	VerifiedBy *uint          `json:"verified_by,omitempty"`
}

// BeforeCreate assigns a random id and the upload time when missing.
func (d *Document) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return nil
}

// AdminNote is a free-text annotation left by an admin. Append-only.
type AdminNote struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID string    `gorm:"type:uuid;not null;index" json:"company_id"`
	AdminID   uint      `gorm:"not null" json:"admin_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *AdminNote) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
