package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of one book. A user reviews a book at most once.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_review_book_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_book_user;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID wrote the review.
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}
