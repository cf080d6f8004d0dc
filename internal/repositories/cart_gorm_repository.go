package repositories

import (
	"context"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) ListByUserID(ctx context.Context, userID uint) ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0)
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart of user %d: %w", userID, err)
	}
	return lines, nil
}

func (r *GORMCartRepository) GetByID(ctx context.Context, id uint) (*models.CartLine, error) {
	var line models.CartLine
	if err := conn(ctx, r.db).First(&line, id).Error; err != nil {
		return nil, translate(err, "cart line %d", id)
	}
	return &line, nil
}

func (r *GORMCartRepository) GetByUserAndBook(ctx context.Context, userID, bookID uint) (*models.CartLine, error) {
	var line models.CartLine
	err := conn(ctx, r.db).Where("user_id = ? AND book_id = ?", userID, bookID).First(&line).Error
	if err != nil {
		return nil, translate(err, "cart line for user %d and book %d", userID, bookID)
	}
	return &line, nil
}

func (r *GORMCartRepository) Create(ctx context.Context, line *models.CartLine) error {
	if err := conn(ctx, r.db).Create(line).Error; err != nil {
		return translate(err, "cart line for book %d", line.BookID)
	}
	return nil
}

func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	res := conn(ctx, r.db).Model(&models.CartLine{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %d not found for update: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.CartLine{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line %d not found for deletion: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) DeleteAllByUserID(ctx context.Context, userID uint) (int64, error) {
	res := conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
