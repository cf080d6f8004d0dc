package models

import "time"

// Order event types written to the outbox.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderDelivered = "order.delivered"
	EventOrderCancelled = "order.cancelled"
)

// OutboxEvent is a domain event stored in the same transaction as the change it describes,
// waiting to be relayed to the message broker.
type OutboxEvent struct {
	ID          uint       `gorm:"primaryKey"`
	EventID     string     `gorm:"type:varchar(36);uniqueIndex;not null"`
	EventType   string     `gorm:"type:varchar(64);not null"`
	AggregateID uint       `gorm:"not null;index"`
	Payload     string     `gorm:"type:text;not null"`
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:text"`
	PublishedAt *time.Time `gorm:"index"`
	CreatedAt   time.Time
}

// OrderEvent is the JSON envelope published for every order state change.
type OrderEvent struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OrderID    uint        `json:"order_id"`
	UserID     uint        `json:"user_id"`
	Status     OrderStatus `json:"status"`
	TotalPrice string      `json:"total_price"`
	OccurredAt time.Time   `json:"occurred_at"`
}
