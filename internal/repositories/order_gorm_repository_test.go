package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingOrder(userID uint, createdAt time.Time) *models.Order {
	return &models.Order{
		UserID:          userID,
		TotalPrice:      decimal.NewFromInt(25),
		ShippingAddress: "123 Main St",
		Status:          models.OrderStatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestGORMOrderRepository_CreateAndRead(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	ctx := context.Background()

	order := newPendingOrder(1, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	items := []models.OrderItem{
		{OrderID: order.ID, BookID: 10, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{OrderID: order.ID, BookID: 11, Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}
	require.NoError(t, repo.CreateItems(ctx, items))
	assert.NotZero(t, items[0].ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	assert.True(t, decimal.NewFromInt(25).Equal(got.TotalPrice))
	assert.Nil(t, got.DeliveredAt)

	stored, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, uint(10), stored[0].BookID)
	assert.True(t, decimal.NewFromInt(10).Equal(stored[0].UnitPrice))

	_, err = repo.GetByID(ctx, order.ID+100)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGORMOrderRepository_ListByUserIDOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := newPendingOrder(1, base.Add(time.Hour))
	earlier := newPendingOrder(1, base)
	sameTime := newPendingOrder(1, base.Add(time.Hour))
	other := newPendingOrder(2, base)
	for _, o := range []*models.Order{later, earlier, sameTime, other} {
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, earlier.ID, orders[0].ID)
	assert.Equal(t, later.ID, orders[1].ID, "ties on created_at are broken by id")
	assert.Equal(t, sameTime.ID, orders[2].ID)

	none, err := repo.ListByUserID(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGORMOrderRepository_TransitionStatusIsCompareAndSwap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	ctx := context.Background()

	order := newPendingOrder(1, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	at := time.Now().UTC()
	delivered := *order
	require.NoError(t, delivered.Deliver(at))
	ok, err := repo.TransitionStatus(ctx, &delivered, models.OrderStatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	// A writer that still believes the order is pending loses.
	cancelled := *order
	require.NoError(t, cancelled.Cancel(at))
	ok, err = repo.TransitionStatus(ctx, &cancelled, models.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
	assert.NotNil(t, got.DeliveredAt)
	assert.Nil(t, got.CancelledAt)
}

func TestGORMTxManager_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	txm := repositories.NewGORMTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := txm.WithinTx(ctx, func(ctx context.Context) error {
		require.NotNil(t, repositories.TxFromContext(ctx))
		if err := repo.Create(ctx, newPendingOrder(1, time.Now().UTC())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGORMTxManager_NestedCallsJoinOuterTx(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMOrderRepository(db)
	txm := repositories.NewGORMTxManager(db)
	ctx := context.Background()

	err := txm.WithinTx(ctx, func(outer context.Context) error {
		return txm.WithinTx(outer, func(inner context.Context) error {
			assert.Same(t, repositories.TxFromContext(outer), repositories.TxFromContext(inner))
			return repo.Create(inner, newPendingOrder(1, time.Now().UTC()))
		})
	})
	require.NoError(t, err)

	orders, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
