package repositories

import (
	"context"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMBookRepository is a GORM implementation of BookRepository.
// Deleted books are soft-deleted and disappear from every query.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{
		db: db,
	}
}

// GetAll retrieves all books ordered by ID.
func (r *GORMBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := conn(ctx, r.db).Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to get all books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a single book by its ID.
func (r *GORMBookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := conn(ctx, r.db).First(&book, id).Error; err != nil {
		return nil, translate(err, "book with ID %d", id)
	}
	return &book, nil
}

// ListByCategoryID retrieves the books of one category ordered by ID.
func (r *GORMBookRepository) ListByCategoryID(ctx context.Context, categoryID uint) ([]models.Book, error) {
	books := make([]models.Book, 0)
	if err := conn(ctx, r.db).Where("category_id = ?", categoryID).Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books of category %d: %w", categoryID, err)
	}
	return books, nil
}

// Create creates a new book.
func (r *GORMBookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := conn(ctx, r.db).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing book, zero values included.
func (r *GORMBookRepository) Update(ctx context.Context, book *models.Book) error {
	res := conn(ctx, r.db).Model(book).
		Select("title", "author", "description", "price", "stock", "category_id").
		Updates(book)
	if res.Error != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d not found for update: %w", book.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a book by its ID.
func (r *GORMBookRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Book{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %d not found for deletion: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *GORMBookRepository) SetAverageRating(ctx context.Context, id uint, rating float64) error {
	err := conn(ctx, r.db).Model(&models.Book{}).Where("id = ?", id).Update("average_rating", rating).Error
	if err != nil {
		return fmt.Errorf("failed to set average rating of book %d: %w", id, err)
	}
	return nil
}
