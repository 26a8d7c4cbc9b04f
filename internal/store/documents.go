package store

import (
	"context"

	"github.com/diewo77/jurigo/internal/models"
	"gorm.io/gorm"
)

type Documents struct {
	db *gorm.DB
}

func NewDocuments(db *gorm.DB) *Documents {
	return &Documents{db: db}
}

func (s *Documents) Create(ctx context.Context, d *models.Document) error {
	return wrap("document.create", s.db.WithContext(ctx).Create(d).Error)
}

func (s *Documents) Get(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, wrap("document.get", err)
	}
	return &d, nil
}

// ListByCompany returns the company's documents, oldest upload first.
func (s *Documents) ListByCompany(ctx context.Context, companyID string) ([]models.Document, error) {
	var out []models.Document
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("uploaded_at ASC").Find(&out).Error
	return out, wrap("document.list", err)
}

func (s *Documents) Save(ctx context.Context, d *models.Document) error {
	return wrap("document.save", s.db.WithContext(ctx).Save(d).Error)
}

func (s *Documents) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return wrap("document.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("document.delete", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Documents) CountByStatus(ctx context.Context, status models.DocumentStatus) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Document{}).Where("status = ?", status).Count(&n).Error
	return n, wrap("document.count", err)
}
