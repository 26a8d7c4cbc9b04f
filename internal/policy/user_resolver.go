package policy

import (
	"context"
	"errors"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/internal/models"
	"gorm.io/gorm"
)

// UserRoleResolver resolves a user id to the profile of the role stored on
// the users row. Deleted or missing users have no profile.
type UserRoleResolver struct {
	DB *gorm.DB
}

func NewUserRoleResolver(db *gorm.DB) *UserRoleResolver {
	return &UserRoleResolver{DB: db}
}

func (r *UserRoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select("id", "role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ProfileForRole(user.Role), nil
}
