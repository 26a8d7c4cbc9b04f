package store

import (
	"context"
	"strings"

	"github.com/diewo77/jurigo/internal/models"
	"gorm.io/gorm"
)

// Companies is the gorm-backed company repository.
type Companies struct {
	db *gorm.DB
}

func NewCompanies(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

func (s *Companies) Create(ctx context.Context, c *models.Company) error {
	return wrap("company.create", s.db.WithContext(ctx).Create(c).Error)
}

func (s *Companies) Get(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, wrap("company.get", err)
	}
	return &c, nil
}

// Save writes every column of c, zero values included.
func (s *Companies) Save(ctx context.Context, c *models.Company) error {
	return wrap("company.save", s.db.WithContext(ctx).Save(c).Error)
}

// ListByEmail matches the contact email case-insensitively, newest first.
func (s *Companies) ListByEmail(ctx context.Context, email string) ([]models.Company, error) {
	var out []models.Company
	err := s.db.WithContext(ctx).
		Where("LOWER(contact_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&out).Error
	return out, wrap("company.list_by_email", err)
}

func (s *Companies) ListByUser(ctx context.Context, userID uint) ([]models.Company, error) {
	var out []models.Company
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, wrap("company.list_by_user", err)
}

// ListFilter narrows List. Zero fields match everything.
type ListFilter struct {
	Status models.CompanyStatus
	Limit  int
	Offset int
}

func (s *Companies) List(ctx context.Context, f ListFilter) ([]models.Company, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []models.Company
	return out, wrap("company.list", q.Find(&out).Error)
}

func (s *Companies) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Company{}).Count(&n).Error
	return n, wrap("company.count", err)
}

// CountByStatus groups companies by status. Statuses without rows are absent.
func (s *Companies) CountByStatus(ctx context.Context) (map[models.CompanyStatus]int64, error) {
	var rows []struct {
		Status models.CompanyStatus
		N      int64
	}
	err := s.db.WithContext(ctx).Model(&models.Company{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("company.count_by_status", err)
	}
	out := make(map[models.CompanyStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
