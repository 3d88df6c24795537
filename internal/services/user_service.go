package services

import (
	"context"

	"github.com/justsurfingit/temu/internal/models"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser creates the local mirror of an upstream identity on first sight
// and keeps its email and role current.
func (s *UserService) EnsureUser(ctx context.Context, id, email, role string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where(models.User{ID: id}).
		Attrs(models.User{Email: email, Role: role}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	if (email != "" && user.Email != email) || (role != "" && user.Role != role) {
		if email != "" {
			user.Email = email
		}
		if role != "" {
			user.Role = role
		}
		if err := s.DB.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}
