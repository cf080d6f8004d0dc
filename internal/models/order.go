package models

import (
	"fmt"
	"time"

	"bookstore/internal/errs"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem is a frozen line of an order. UnitPrice is the catalog price at placement time
// and rows are never updated after insert.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	BookID    uint            `json:"book_id" gorm:"not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Subtotal returns UnitPrice × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the header of a placed purchase.
type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:varchar(500);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);not null;index"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Items is filled only by operations that return the full aggregate.
	Items []OrderItem `json:"items,omitempty" gorm:"-"`
}

// TotalOf sums the subtotals of items.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// Deliver moves a pending order to DELIVERED at the given instant.
func (o *Order) Deliver(at time.Time) error {
	switch o.Status {
	case OrderStatusPending:
	case OrderStatusCancelled:
		return fmt.Errorf("%w: cannot deliver a cancelled order (order %d)", errs.ErrIllegalState, o.ID)
	case OrderStatusDelivered:
		return fmt.Errorf("%w: order %d already delivered", errs.ErrIllegalState, o.ID)
	default:
		return fmt.Errorf("%w: order %d has unknown status %q", errs.ErrIllegalState, o.ID, o.Status)
	}
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &at
	o.UpdatedAt = at
	return nil
}

// Cancel moves a pending order to CANCELLED at the given instant.
func (o *Order) Cancel(at time.Time) error {
	switch o.Status {
	case OrderStatusPending:
	case OrderStatusDelivered:
		return fmt.Errorf("%w: cannot cancel a delivered order (order %d)", errs.ErrIllegalState, o.ID)
	case OrderStatusCancelled:
		return fmt.Errorf("%w: order %d already cancelled", errs.ErrIllegalState, o.ID)
	default:
		return fmt.Errorf("%w: order %d has unknown status %q", errs.ErrIllegalState, o.ID, o.Status)
	}
	o.Status = OrderStatusCancelled
	o.CancelledAt = &at
	o.UpdatedAt = at
	return nil
}
