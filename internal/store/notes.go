package store

import (
	"context"

	"github.com/diewo77/jurigo/internal/models"
	"gorm.io/gorm"
)

// Notes stores admin annotations. There is no update or delete.
type Notes struct {
	db *gorm.DB
}

func NewNotes(db *gorm.DB) *Notes {
	return &Notes{db: db}
}

func (s *Notes) Create(ctx context.Context, n *models.AdminNote) error {
	return wrap("note.create", s.db.WithContext(ctx).Create(n).Error)
}

func (s *Notes) ListByCompany(ctx context.Context, companyID string) ([]models.AdminNote, error) {
	var out []models.AdminNote
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at ASC").Find(&out).Error
	return out, wrap("note.list", err)
}
