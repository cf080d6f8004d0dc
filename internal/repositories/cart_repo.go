package repositories

import (
	"context"

	"bookstore/internal/models"
)

// CartRepository defines the interface for shopping cart data operations.
type CartRepository interface {
	ListByUserID(ctx context.Context, userID uint) ([]models.CartLine, error)
	GetByID(ctx context.Context, id uint) (*models.CartLine, error)
	GetByUserAndBook(ctx context.Context, userID, bookID uint) (*models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
	// DeleteAllByUserID removes every line of the user's cart. An empty cart is not an error.
	DeleteAllByUserID(ctx context.Context, userID uint) (int64, error)
}
