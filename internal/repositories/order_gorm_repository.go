package repositories

import (
	"context"
	"fmt"

	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order header. Items are written separately by CreateItems.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := conn(ctx, r.db).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order for user %d: %w", order.UserID, err)
	}
	return nil
}

// CreateItems inserts all items in one batch.
func (r *GORMOrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create items for order %d: %w", items[0].OrderID, err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := conn(ctx, r.db).First(&order, id).Error; err != nil {
		return nil, translate(err, "order with ID %d", id)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	if err := conn(ctx, r.db).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items of order %d: %w", orderID, err)
	}
	return items, nil
}

func (r *GORMOrderRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// TransitionStatus is a compare-and-swap on the status column.
func (r *GORMOrderRepository) TransitionStatus(ctx context.Context, order *models.Order, from models.OrderStatus) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"delivered_at": order.DeliveredAt,
			"cancelled_at": order.CancelledAt,
			"updated_at":   order.UpdatedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to move order %d from %s to %s: %w", order.ID, from, order.Status, res.Error)
	}
	return res.RowsAffected == 1, nil
}
