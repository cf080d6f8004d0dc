// Package outbox relays stored order events to the message broker.
package outbox

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bookstore/internal/repositories"

	"go.uber.org/zap"
)

// Publisher delivers one event to a broker. key identifies the aggregate so that
// events of one order keep their relative order where the broker supports it.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, body []byte) error
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	Logger *zap.Logger
}

func (p *LogPublisher) Publish(_ context.Context, eventType, key string, body []byte) error {
	if p.Logger != nil {
		p.Logger.Info("outbox event published",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.ByteString("payload", body),
		)
	}
	return nil
}

// Relay polls the outbox and hands pending events to a Publisher. Delivery is at least
// once: an event is marked published only after Publish returned nil.
type Relay struct {
	repo         repositories.OutboxRepository
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	logger       *zap.Logger
	now          func() time.Time
}

// NewRelay validates its arguments and creates a Relay.
func NewRelay(
	repo repositories.OutboxRepository,
	publisher Publisher,
	pollInterval time.Duration,
	batchSize int,
	maxAttempts int,
	logger *zap.Logger,
) (*Relay, error) {
	if repo == nil {
		return nil, errors.New("outbox repository is required")
	}
	if publisher == nil {
		return nil, errors.New("outbox publisher is required")
	}
	if pollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if batchSize <= 0 {
		return nil, errors.New("batch size must be positive")
	}
	if maxAttempts <= 0 {
		return nil, errors.New("max attempts must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run drains the outbox every poll interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started",
		zap.Int("batch_size", r.batchSize),
		zap.Duration("poll_interval", r.pollInterval))

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		published, err := r.ProcessBatch(ctx)
		if err != nil {
			r.logger.Error("outbox batch failed", zap.Error(err))
			return
		}
		// Only a fully published batch means more may be waiting. Any failure waits
		// for the next tick so a broker outage costs one attempt per poll interval.
		if published < r.batchSize {
			return
		}
	}
}

// ProcessBatch publishes up to one batch of pending events and returns how many of them
// were published. A failed publish is recorded on the event and retried on a later batch
// until the event runs out of attempts.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	events, err := r.repo.FetchPending(ctx, r.batchSize, r.maxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		key := strconv.FormatUint(uint64(event.AggregateID), 10)
		if pubErr := r.publisher.Publish(ctx, event.EventType, key, []byte(event.Payload)); pubErr != nil {
			r.logger.Warn("publish failed",
				zap.Uint("id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Int("attempt", event.Attempts+1),
				zap.Error(pubErr))
			if err := r.repo.MarkFailed(ctx, event.ID, pubErr.Error()); err != nil {
				return published, err
			}
			continue
		}
		if err := r.repo.MarkPublished(ctx, event.ID, r.now()); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
