package services

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// CartService manages per-user shopping carts.
type CartService struct {
	users repositories.UserRepository
	books repositories.BookRepository
	carts repositories.CartRepository
}

// NewCartService creates a new CartService.
func NewCartService(users repositories.UserRepository, books repositories.BookRepository, carts repositories.CartRepository) *CartService {
	return &CartService{users: users, books: books, carts: carts}
}

// ListCart returns the caller's cart lines.
func (s *CartService) ListCart(ctx context.Context, email string) ([]models.CartLine, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.carts.ListByUserID(ctx, user.ID)
}

// ListCartForUserID returns any user's cart lines.
func (s *CartService) ListCartForUserID(ctx context.Context, userID uint) ([]models.CartLine, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.carts.ListByUserID(ctx, userID)
}

// AddLine puts a book into the caller's cart. A book already in the cart is ErrConflict;
// its quantity is changed with UpdateLine instead.
func (s *CartService) AddLine(ctx context.Context, email string, bookID uint, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidInput)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	_, err = s.carts.GetByUserAndBook(ctx, user.ID, bookID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("book %d is already in the cart: %w", bookID, errs.ErrConflict)
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	line := &models.CartLine{UserID: user.ID, BookID: bookID, Quantity: quantity}
	if err := s.carts.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine sets the quantity of a line in the caller's cart.
func (s *CartService) UpdateLine(ctx context.Context, email string, lineID uint, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidInput)
	}
	line, err := s.ownedLine(ctx, email, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.UpdateQuantity(ctx, line.ID, quantity); err != nil {
		return nil, err
	}
	line.Quantity = quantity
	return line, nil
}

// DeleteLine removes a line from the caller's cart.
func (s *CartService) DeleteLine(ctx context.Context, email string, lineID uint) error {
	line, err := s.ownedLine(ctx, email, lineID)
	if err != nil {
		return err
	}
	return s.carts.Delete(ctx, line.ID)
}

func (s *CartService) ownedLine(ctx context.Context, email string, lineID uint) (*models.CartLine, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	line, err := s.carts.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.UserID != user.ID {
		return nil, fmt.Errorf("%w: cart line %d does not belong to user %d", errs.ErrForbidden, lineID, user.ID)
	}
	return line, nil
}
