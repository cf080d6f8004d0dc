package repositories

import (
	"context"
	"time"

	"bookstore/internal/models"
)

// OutboxRepository stores domain events until they are relayed.
type OutboxRepository interface {
	Save(ctx context.Context, event *models.OutboxEvent) error
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error
}
