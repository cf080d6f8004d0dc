package repositories

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMOutboxRepository is a GORM implementation of OutboxRepository.
type GORMOutboxRepository struct {
	db *gorm.DB
}

// NewGORMOutboxRepository creates a new instance of GORMOutboxRepository.
func NewGORMOutboxRepository(db *gorm.DB) *GORMOutboxRepository {
	return &GORMOutboxRepository{db: db}
}

func (r *GORMOutboxRepository) Save(ctx context.Context, event *models.OutboxEvent) error {
	if err := conn(ctx, r.db).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save %s event: %w", event.EventType, err)
	}
	return nil
}

// FetchPending returns unpublished events that have not exhausted their attempts, oldest first.
func (r *GORMOutboxRepository) FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	events := make([]models.OutboxEvent, 0, limit)
	err := conn(ctx, r.db).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	return events, nil
}

func (r *GORMOutboxRepository) MarkPublished(ctx context.Context, id uint, at time.Time) error {
	err := conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"published_at": at, "last_error": ""}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event %d published: %w", id, err)
	}
	return nil
}

func (r *GORMOutboxRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	err := conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event %d failed: %w", id, err)
	}
	return nil
}
