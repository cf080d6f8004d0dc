package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

const maxCommentLength = 2000

// ReviewService manages book reviews and keeps each book's average rating in step
// with its reviews. Only the author of a review may change or remove it.
type ReviewService struct {
	tx      Transactor
	users   repositories.UserRepository
	books   repositories.BookRepository
	reviews repositories.ReviewRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	tx Transactor,
	users repositories.UserRepository,
	books repositories.BookRepository,
	reviews repositories.ReviewRepository,
) *ReviewService {
	return &ReviewService{tx: tx, users: users, books: books, reviews: reviews}
}

func (s *ReviewService) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListReviewsForBook returns the reviews of a book in the catalog.
func (s *ReviewService) ListReviewsForBook(ctx context.Context, bookID uint) ([]models.Review, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.reviews.ListByBookID(ctx, bookID)
}

// ListReviewsForUser returns the reviews written by a user.
func (s *ReviewService) ListReviewsForUser(ctx context.Context, userID uint) ([]models.Review, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.reviews.ListByUserID(ctx, userID)
}

// CreateReview records the caller's review of a book. A second review of the same
// book by the same user is ErrConflict.
func (s *ReviewService) CreateReview(ctx context.Context, email string, bookID uint, rating int, comment string) (*models.Review, error) {
	comment, err := checkReview(rating, comment)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	review := &models.Review{BookID: bookID, UserID: user.ID, Rating: rating, Comment: comment}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.books.GetByID(ctx, bookID); err != nil {
			return err
		}
		_, err := s.reviews.GetByBookAndUser(ctx, bookID, user.ID)
		switch {
		case err == nil:
			return fmt.Errorf("user %d already reviewed book %d: %w", user.ID, bookID, errs.ErrConflict)
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			return err
		}
		return s.refreshRating(ctx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview changes the rating and comment of one of the caller's reviews.
func (s *ReviewService) UpdateReview(ctx context.Context, email string, id uint, rating int, comment string) (*models.Review, error) {
	comment, err := checkReview(rating, comment)
	if err != nil {
		return nil, err
	}

	var updated *models.Review
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		review, err := s.ownedReview(ctx, email, id)
		if err != nil {
			return err
		}
		review.Rating = rating
		review.Comment = comment
		if err := s.reviews.Update(ctx, review); err != nil {
			return err
		}
		updated = review
		return s.refreshRating(ctx, review.BookID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReview removes one of the caller's reviews.
func (s *ReviewService) DeleteReview(ctx context.Context, email string, id uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		review, err := s.ownedReview(ctx, email, id)
		if err != nil {
			return err
		}
		if err := s.reviews.Delete(ctx, review.ID); err != nil {
			return err
		}
		return s.refreshRating(ctx, review.BookID)
	})
}

func (s *ReviewService) ownedReview(ctx context.Context, email string, id uint) (*models.Review, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(user.ID) {
		return nil, fmt.Errorf("%w: review %d does not belong to user %d", errs.ErrForbidden, id, user.ID)
	}
	return review, nil
}

func (s *ReviewService) refreshRating(ctx context.Context, bookID uint) error {
	avg, err := s.reviews.AverageRating(ctx, bookID)
	if err != nil {
		return err
	}
	return s.books.SetAverageRating(ctx, bookID, avg)
}

func checkReview(rating int, comment string) (string, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return "", fmt.Errorf("%w: rating must be between %d and %d", errs.ErrInvalidInput, models.MinRating, models.MaxRating)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" || utf8.RuneCountInString(comment) > maxCommentLength {
		return "", fmt.Errorf("%w: comment must be 1 to %d characters", errs.ErrInvalidInput, maxCommentLength)
	}
	return comment, nil
}
