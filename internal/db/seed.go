package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/jurigo/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin makes sure an admin account exists for email. An existing user
// with that email is promoted; its password is left unchanged.
func SeedAdmin(d *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("seed admin: email and password are required")
	}
	var user models.User
	err := d.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := d.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return nil, fmt.Errorf("promote admin: %w", err)
			}
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user = models.User{Email: email, Name: "Admin", Password: string(hash), Role: models.RoleAdmin}
	if err := d.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &user, nil
}
