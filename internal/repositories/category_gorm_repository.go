package repositories

import (
	"context"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
// Categories are soft-deleted like books.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := conn(ctx, r.db).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, translate(err, "category with ID %d", id)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := conn(ctx, r.db).First(&category, "name = ?", name).Error; err != nil {
		return nil, translate(err, "category with name %s", name)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := conn(ctx, r.db).Create(category).Error; err != nil {
		return translate(err, "category %s", category.Name)
	}
	return nil
}

// Update overwrites the name and description of an existing category.
func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := conn(ctx, r.db).Model(category).Select("name", "description").Updates(category)
	if res.Error != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category with ID %d not found for update: %w", category.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a category. Books keep their category_id.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Category{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category with ID %d not found for deletion: %w", id, errs.ErrNotFound)
	}
	return nil
}
