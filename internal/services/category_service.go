package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// CategoryService manages book categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory adds a category. A name already in use is ErrConflict.
func (s *CategoryService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if err := s.checkNameFree(ctx, category.Name, 0); err != nil {
		return err
	}
	category.ID = 0
	return s.repo.Create(ctx, category)
}

// UpdateCategory renames or redescribes a category. Taking the name of another
// category is ErrConflict; keeping its own name is fine.
func (s *CategoryService) UpdateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if _, err := s.repo.GetByID(ctx, category.ID); err != nil {
		return err
	}
	if err := s.checkNameFree(ctx, category.Name, category.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) checkNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("category with name %s already exists: %w", name, errs.ErrConflict)
	default:
		return nil
	}
}
