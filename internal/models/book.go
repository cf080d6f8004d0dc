package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a catalog entry. Its Price is the live price; orders copy it at placement time.
// AverageRating is maintained by review writes and is 0 for an unreviewed book.
type Book struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Title         string          `json:"title" gorm:"type:varchar(255);not null"`
	Author        string          `json:"author" gorm:"type:varchar(255);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock         int             `json:"stock" gorm:"not null;default:0"`
	CategoryID    *uint           `json:"category_id" gorm:"index"`
	AverageRating float64         `json:"average_rating" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}
