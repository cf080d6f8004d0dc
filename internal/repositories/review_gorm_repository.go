package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"bookstore/internal/errs"
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := conn(ctx, r.db).First(&review, id).Error; err != nil {
		return nil, translate(err, "review with ID %d", id)
	}
	return &review, nil
}

func (r *GORMReviewRepository) GetByBookAndUser(ctx context.Context, bookID, userID uint) (*models.Review, error) {
	var review models.Review
	err := conn(ctx, r.db).Where("book_id = ? AND user_id = ?", bookID, userID).First(&review).Error
	if err != nil {
		return nil, translate(err, "review of book %d by user %d", bookID, userID)
	}
	return &review, nil
}

func (r *GORMReviewRepository) ListByBookID(ctx context.Context, bookID uint) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := conn(ctx, r.db).Where("book_id = ?", bookID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews of book %d: %w", bookID, err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews of user %d: %w", userID, err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := conn(ctx, r.db).Create(review).Error; err != nil {
		return translate(err, "review of book %d by user %d", review.BookID, review.UserID)
	}
	return nil
}

// Update overwrites the rating and comment of an existing review.
func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review) error {
	res := conn(ctx, r.db).Model(review).Select("rating", "comment").Updates(review)
	if res.Error != nil {
		return fmt.Errorf("failed to update review %d: %w", review.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %d not found for update: %w", review.ID, errs.ErrNotFound)
	}
	return nil
}

func (r *GORMReviewRepository) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %d not found for deletion: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *GORMReviewRepository) AverageRating(ctx context.Context, bookID uint) (float64, error) {
	var avg sql.NullFloat64
	row := conn(ctx, r.db).Model(&models.Review{}).Select("AVG(rating)").Where("book_id = ?", bookID).Row()
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average ratings of book %d: %w", bookID, err)
	}
	return avg.Float64, nil
}
