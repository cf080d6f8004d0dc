package rabbitmq

import (
	"encoding/json"
	"fmt"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// OrderEventMessage is the subset of an order event the consumer needs.
type OrderEventMessage struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	OrderID    uint   `json:"order_id"`
	UserID     uint   `json:"user_id"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
}

// LoggingHandler returns a consumer handler that decodes order events and logs them.
// Undecodable messages are rejected.
func LoggingHandler(logger *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event OrderEventMessage
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("malformed order event %s: %w", msg.MessageId, err)
		}
		logger.Info("order event received",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.Uint("order_id", event.OrderID),
			zap.String("status", event.Status),
		)
		return nil
	}
}
