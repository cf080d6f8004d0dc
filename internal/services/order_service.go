package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transactor runs fn inside one store transaction. The transaction commits only if fn
// returns nil; repositories called with the context passed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderService converts carts into orders and drives the order state machine.
//
// Callers are identified by email, as carried in their verified token. Administrative
// capability is enforced by the transport layer before Deliver and the unscoped reads.
type OrderService struct {
	tx      Transactor
	users   repositories.UserRepository
	books   repositories.BookRepository
	carts   repositories.CartRepository
	orders  repositories.OrderRepository
	outbox  repositories.OutboxRepository
	metrics *metrics.OrderMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// OrderOption customizes an OrderService.
type OrderOption func(*OrderService)

// WithClock replaces the time source used for order timestamps.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithOrderLogger sets the logger.
func WithOrderLogger(l *zap.Logger) OrderOption {
	return func(s *OrderService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOrderMetrics records placements, transitions and rejections in m.
func WithOrderMetrics(m *metrics.OrderMetrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	tx Transactor,
	users repositories.UserRepository,
	books repositories.BookRepository,
	carts repositories.CartRepository,
	orders repositories.OrderRepository,
	outbox repositories.OutboxRepository,
	opts ...OrderOption,
) *OrderService {
	s := &OrderService{
		tx:     tx,
		users:  users,
		books:  books,
		carts:  carts,
		orders: orders,
		outbox: outbox,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the caller's whole cart into a PENDING order with frozen unit prices
// and empties the cart. Everything happens in one transaction: on any failure no order
// exists and the cart is unchanged. The returned order has its Items populated.
func (s *OrderService) PlaceOrder(ctx context.Context, email, shippingAddress string) (*models.Order, error) {
	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		return nil, s.reject("place", fmt.Errorf("%w: shipping address must not be empty", errs.ErrInvalidInput))
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.reject("place", fmt.Errorf("failed to resolve caller: %w", err))
	}

	var placed *models.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := s.carts.ListByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("user %d: %w", user.ID, errs.ErrEmptyCart)
		}

		now := s.now()
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			// Books can be removed from the catalog after they were put in a cart.
			book, err := s.books.GetByID(ctx, line.BookID)
			if err != nil {
				return fmt.Errorf("cart line %d references an unavailable book: %w", line.ID, err)
			}
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: cart line %d has quantity %d", errs.ErrInvalidInput, line.ID, line.Quantity)
			}
			items = append(items, models.OrderItem{
				BookID:    line.BookID,
				Quantity:  line.Quantity,
				UnitPrice: book.Price,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		order := &models.Order{
			UserID:          user.ID,
			TotalPrice:      models.TotalOf(items),
			ShippingAddress: address,
			Status:          models.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.orders.CreateItems(ctx, items); err != nil {
			return err
		}
		if err := s.recordEvent(ctx, models.EventOrderPlaced, order, now); err != nil {
			return err
		}
		// A concurrent checkout of the same cart clears it first; rolling back here
		// keeps one cart from turning into two orders.
		deleted, err := s.carts.DeleteAllByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if deleted != int64(len(lines)) {
			return fmt.Errorf("%w: cart of user %d changed while placing the order (%d of %d lines cleared)",
				errs.ErrConflict, user.ID, deleted, len(lines))
		}

		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		return nil, s.reject("place", fmt.Errorf("failed to place order for %s: %w", email, err))
	}

	s.metrics.ObservePlaced()
	s.logger.Info("order placed",
		zap.Uint("order_id", placed.ID),
		zap.Uint("user_id", placed.UserID),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.TotalPrice.StringFixed(2)),
	)
	return placed, nil
}

// GetOrder returns any order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetOrderForOwner returns the order only if the caller placed it. An existing order
// of another user is ErrForbidden, not ErrNotFound.
func (s *OrderService) GetOrderForOwner(ctx context.Context, email string, id uint) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, email, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrderItems returns the frozen items of any order.
func (s *OrderService) ListOrderItems(ctx context.Context, id uint) ([]models.OrderItem, error) {
	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.ListItems(ctx, id)
}

// ListOrderItemsForOwner returns the items of an order the caller placed.
func (s *OrderService) ListOrderItemsForOwner(ctx context.Context, email string, id uint) ([]models.OrderItem, error) {
	if _, err := s.GetOrderForOwner(ctx, email, id); err != nil {
		return nil, err
	}
	return s.orders.ListItems(ctx, id)
}

// ListOrderHistory returns every order of the caller, oldest first.
func (s *OrderService) ListOrderHistory(ctx context.Context, email string) ([]models.Order, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUserID(ctx, user.ID)
}

// ListOrderHistoryForOwnerID returns every order of the given user, oldest first.
func (s *OrderService) ListOrderHistoryForOwnerID(ctx context.Context, userID uint) ([]models.Order, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUserID(ctx, userID)
}

// Deliver moves a PENDING order to DELIVERED. Delivering a delivered or cancelled
// order is ErrIllegalState.
func (s *OrderService) Deliver(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.transition(ctx, id, models.EventOrderDelivered, nil, (*models.Order).Deliver)
	if err != nil {
		return nil, s.reject("deliver", err)
	}
	return order, nil
}

// Cancel moves a PENDING order placed by the caller to CANCELLED. Cancelling someone
// else's order is ErrForbidden; cancelling a delivered or cancelled order is ErrIllegalState.
func (s *OrderService) Cancel(ctx context.Context, email string, id uint) (*models.Order, error) {
	guard := func(ctx context.Context, order *models.Order) error {
		return s.checkOwner(ctx, email, order)
	}
	order, err := s.transition(ctx, id, models.EventOrderCancelled, guard, (*models.Order).Cancel)
	if err != nil {
		return nil, s.reject("cancel", err)
	}
	return order, nil
}

// transition loads the order, runs guard and apply, and persists the result with a
// compare-and-swap on the PENDING status together with its outbox event. If another
// writer moved the order first, the fresh state is re-checked so the caller gets the
// same ErrIllegalState it would have seen without the race.
func (s *OrderService) transition(
	ctx context.Context,
	id uint,
	eventType string,
	guard func(context.Context, *models.Order) error,
	apply func(*models.Order, time.Time) error,
) (*models.Order, error) {
	var result *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, order); err != nil {
				return err
			}
		}

		from := order.Status
		now := s.now()
		if err := apply(order, now); err != nil {
			return err
		}

		swapped, err := s.orders.TransitionStatus(ctx, order, from)
		if err != nil {
			return err
		}
		if !swapped {
			current, err := s.orders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := apply(current, now); err != nil {
				return err
			}
			return fmt.Errorf("%w: order %d was modified concurrently", errs.ErrIllegalState, id)
		}

		if err := s.recordEvent(ctx, eventType, order, now); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(result.Status))
	s.logger.Info("order status changed",
		zap.Uint("order_id", result.ID),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

func (s *OrderService) checkOwner(ctx context.Context, email string, order *models.Order) error {
	caller, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve caller: %w", err)
	}
	if !order.IsOwnedBy(caller.ID) {
		return fmt.Errorf("%w: order %d does not belong to user %d", errs.ErrForbidden, order.ID, caller.ID)
	}
	return nil
}

func (s *OrderService) recordEvent(ctx context.Context, eventType string, order *models.Order, at time.Time) error {
	event := models.OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice.StringFixed(2),
		OccurredAt: at,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return s.outbox.Save(ctx, &models.OutboxEvent{
		EventID:     event.EventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     string(payload),
		CreatedAt:   at,
	})
}

// reject counts and logs a failed operation and returns err unchanged.
func (s *OrderService) reject(op string, err error) error {
	code := errs.CodeOf(err)
	s.metrics.ObserveRejected(op, string(code))
	if code == errs.CodeInternal {
		s.logger.Error("order operation failed", zap.String("op", op), zap.Error(err))
	} else {
		s.logger.Debug("order operation rejected", zap.String("op", op), zap.String("code", string(code)), zap.Error(err))
	}
	return err
}
