package services

import (
	"context"
	"errors"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

// UserService handles account lookups
type UserService struct {
	repo *repository.Repository
}

// NewUserService creates a new UserService
func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
