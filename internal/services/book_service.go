package services

import (
	"context"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// BookService handles catalog operations.
type BookService struct {
	repo       repositories.BookRepository
	categories repositories.CategoryRepository
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository, categories repositories.CategoryRepository) *BookService {
	return &BookService{
		repo:       repo,
		categories: categories,
	}
}

func (s *BookService) GetAllBooks(ctx context.Context) ([]models.Book, error) {
	return s.repo.GetAll(ctx)
}

func (s *BookService) GetBookByID(ctx context.Context, id uint) (*models.Book, error) {
	return s.repo.GetByID(ctx, id)
}

// ListBooksByCategory returns the books of an existing category.
func (s *BookService) ListBooksByCategory(ctx context.Context, categoryID uint) ([]models.Book, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListByCategoryID(ctx, categoryID)
}

// CreateBook adds a book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, book *models.Book) error {
	if err := s.checkBook(ctx, book); err != nil {
		return err
	}
	book.ID = 0
	book.AverageRating = 0
	return s.repo.Create(ctx, book)
}

// UpdateBook replaces the editable fields of an existing book. Orders already placed
// keep the price they were placed with.
func (s *BookService) UpdateBook(ctx context.Context, book *models.Book) error {
	if err := s.checkBook(ctx, book); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, book.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, book)
}

func (s *BookService) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *BookService) checkBook(ctx context.Context, book *models.Book) error {
	if !book.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", errs.ErrInvalidInput)
	}
	if book.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *book.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
