package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups books in the catalog. Names are unique among live categories.
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null;index"`
	Description string         `json:"description" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
