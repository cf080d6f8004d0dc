package repositories

import (
	"context"

	"bookstore/internal/models"
)

// OrderRepository defines the interface for order header and line item storage.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	ListItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	// ListByUserID returns the user's orders by creation time, then ID.
	ListByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	// TransitionStatus persists the status and timestamps of order only if the stored
	// status still equals from. It reports whether the row was updated.
	TransitionStatus(ctx context.Context, order *models.Order, from models.OrderStatus) (bool, error)
}
