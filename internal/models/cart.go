package models

import "time"

// CartLine is one (book, quantity) pair in a user's in-progress cart.
// It carries no price; the price is resolved from the catalog when an order is placed.
type CartLine struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_book"`
	BookID    uint      `json:"book_id" gorm:"not null;uniqueIndex:idx_cart_user_book"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
