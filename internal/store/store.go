// Package store persists companies, documents, notes and users with gorm.
// Missing rows surface as models.ErrNotFound, any other database error as
// models.ErrDependency.
package store

import (
	"errors"

	"github.com/diewo77/jurigo/internal/models"
	"gorm.io/gorm"
)

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.WrapError(models.ErrNotFound, op, nil)
	}
	return models.WrapError(models.ErrDependency, op, err)
}
