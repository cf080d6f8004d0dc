package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/outbox"
	"bookstore/internal/repositories"
	"bookstore/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType, key string, body []byte) error {
	args := m.Called(ctx, eventType, key, body)
	return args.Error(0)
}

func saveEvent(t *testing.T, repo repositories.OutboxRepository, eventType string, orderID uint) *models.OutboxEvent {
	t.Helper()
	event := &models.OutboxEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: orderID,
		Payload:     `{"order_id":1}`,
	}
	require.NoError(t, repo.Save(context.Background(), event))
	return event
}

func reload(t *testing.T, db *gorm.DB, id uint) models.OutboxEvent {
	t.Helper()
	var event models.OutboxEvent
	require.NoError(t, db.First(&event, id).Error)
	return event
}

func TestNewRelay_Validation(t *testing.T) {
	repo := repositories.NewGORMOutboxRepository(nil)
	pub := &outbox.LogPublisher{}

	_, err := outbox.NewRelay(nil, pub, time.Second, 1, 1, nil)
	assert.Error(t, err)
	_, err = outbox.NewRelay(repo, nil, time.Second, 1, 1, nil)
	assert.Error(t, err)
	_, err = outbox.NewRelay(repo, pub, 0, 1, 1, nil)
	assert.Error(t, err)
	_, err = outbox.NewRelay(repo, pub, time.Second, 0, 1, nil)
	assert.Error(t, err)
	_, err = outbox.NewRelay(repo, pub, time.Second, 1, 0, nil)
	assert.Error(t, err)

	relay, err := outbox.NewRelay(repo, pub, time.Second, 1, 1, nil)
	require.NoError(t, err)
	assert.NotNil(t, relay)
}

func TestRelay_ProcessBatch_PublishesInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOutboxRepository(db)
	ctx := context.Background()

	placed := saveEvent(t, repo, models.EventOrderPlaced, 7)
	delivered := saveEvent(t, repo, models.EventOrderDelivered, 7)

	pub := new(MockPublisher)
	first := pub.On("Publish", ctx, models.EventOrderPlaced, "7", []byte(placed.Payload)).Return(nil).Once()
	pub.On("Publish", ctx, models.EventOrderDelivered, "7", []byte(delivered.Payload)).Return(nil).Once().NotBefore(first)

	relay, err := outbox.NewRelay(repo, pub, time.Second, 10, 3, nil)
	require.NoError(t, err)

	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	pub.AssertExpectations(t)

	assert.NotNil(t, reload(t, db, placed.ID).PublishedAt)
	assert.NotNil(t, reload(t, db, delivered.ID).PublishedAt)

	// Nothing left to do.
	n, err = relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelay_ProcessBatch_RetriesUntilMaxAttempts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOutboxRepository(db)
	ctx := context.Background()

	event := saveEvent(t, repo, models.EventOrderCancelled, 3)

	pub := new(MockPublisher)
	pub.On("Publish", ctx, models.EventOrderCancelled, "3", mock.Anything).
		Return(errors.New("broker unavailable")).Twice()

	relay, err := outbox.NewRelay(repo, pub, time.Second, 10, 2, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		n, err := relay.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	stored := reload(t, db, event.ID)
	assert.Equal(t, 2, stored.Attempts)
	assert.Equal(t, "broker unavailable", stored.LastError)
	assert.Nil(t, stored.PublishedAt)

	// Exhausted events are no longer fetched, so Publish is not called a third time.
	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, reload(t, db, event.ID).Attempts)
	pub.AssertExpectations(t)
}

func TestRelay_ProcessBatch_CountsOnlyPublished(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOutboxRepository(db)
	ctx := context.Background()

	saveEvent(t, repo, models.EventOrderPlaced, 1)
	saveEvent(t, repo, models.EventOrderPlaced, 2)

	pub := new(MockPublisher)
	pub.On("Publish", ctx, models.EventOrderPlaced, "1", mock.Anything).Return(errors.New("broker unavailable")).Once()
	pub.On("Publish", ctx, models.EventOrderPlaced, "2", mock.Anything).Return(nil).Once()

	relay, err := outbox.NewRelay(repo, pub, time.Second, 10, 3, nil)
	require.NoError(t, err)

	n, err := relay.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	pub.AssertExpectations(t)
}

func TestRelay_Run_FailingBrokerCostsOneAttemptPerTick(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOutboxRepository(db)
	event := saveEvent(t, repo, models.EventOrderPlaced, 1)

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, models.EventOrderPlaced, "1", mock.Anything).
		Return(errors.New("broker unavailable"))

	// A full batch that fails must not be refetched within the same tick.
	relay, err := outbox.NewRelay(repo, pub, 50*time.Millisecond, 1, 10, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool {
		var stored models.OutboxEvent
		return db.First(&stored, event.ID).Error == nil && stored.Attempts >= 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}

	stored := reload(t, db, event.ID)
	assert.LessOrEqual(t, stored.Attempts, 2)
	assert.Nil(t, stored.PublishedAt)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOutboxRepository(db)
	event := saveEvent(t, repo, models.EventOrderPlaced, 1)

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, models.EventOrderPlaced, "1", mock.Anything).Return(nil).Once()

	relay, err := outbox.NewRelay(repo, pub, 10*time.Millisecond, 10, 3, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool {
		var stored models.OutboxEvent
		return db.First(&stored, event.ID).Error == nil && stored.PublishedAt != nil
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
	pub.AssertExpectations(t)
}
