package services

import (
	"context"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// UserService exposes account reads. Accounts are created through AuthService.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetCurrentUser returns the account behind the caller's token.
func (s *UserService) GetCurrentUser(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
