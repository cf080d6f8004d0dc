package repositories

import (
	"context"

	"bookstore/internal/models"
)

// BookRepository defines the interface for catalog data operations.
type BookRepository interface {
	GetAll(ctx context.Context) ([]models.Book, error)
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	ListByCategoryID(ctx context.Context, categoryID uint) ([]models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	// SetAverageRating stores a recomputed rating. A deleted book is silently skipped.
	SetAverageRating(ctx context.Context, id uint, rating float64) error
}
