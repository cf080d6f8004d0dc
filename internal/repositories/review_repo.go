package repositories

import (
	"context"

	"bookstore/internal/models"
)

// ReviewRepository defines the interface for book review data operations.
type ReviewRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	GetByBookAndUser(ctx context.Context, bookID, userID uint) (*models.Review, error)
	ListByBookID(ctx context.Context, bookID uint) ([]models.Review, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	// AverageRating returns the mean rating of the book's reviews, or 0 when it has none.
	AverageRating(ctx context.Context, bookID uint) (float64, error)
}
