// Package testutil provides fixtures shared by the integration tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SQLiteConfig returns a database config for a private in-memory SQLite database.
// A single connection serializes transactions the way a row lock would.
func SQLiteConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
		AutoMigrate:  true,
	}
}

// Admin credentials seeded by Config.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin-password"
	JWTSecret     = "test_jwt_secret"
)

// Config returns a complete service configuration backed by a private SQLite database,
// with the log publisher, a seeded admin and rate limiting off.
func Config() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "bookstore-test", Env: "test", Port: ":0", ShutdownTimeout: time.Second},
		Database: SQLiteConfig(),
		Auth: config.AuthConfig{
			JWTSecret:     JWTSecret,
			TokenTTL:      time.Hour,
			AdminUsername: "admin",
			AdminEmail:    AdminEmail,
			AdminPassword: AdminPassword,
		},
		Events: config.EventsConfig{
			Broker:       "none",
			Queue:        "order_queue",
			PollInterval: time.Hour,
			BatchSize:    10,
			MaxAttempts:  3,
		},
		Log:       config.LogConfig{Level: "error"},
		RateLimit: config.RateLimitConfig{Enabled: false, Rate: 1, Burst: 5},
	}
}

// NewDB opens and migrates a fresh in-memory database that is closed when t ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(SQLiteConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedUser inserts a user with the given email and role.
func SeedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, Password: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedBook inserts a book with the given price.
func SeedBook(t *testing.T, db *gorm.DB, title string, price int64) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Author: "Author of " + title, Price: decimal.NewFromInt(price), Stock: 100}
	require.NoError(t, db.Create(book).Error)
	return book
}

// SeedCartLine puts quantity copies of book into the user's cart.
func SeedCartLine(t *testing.T, db *gorm.DB, user *models.User, book *models.Book, quantity int) *models.CartLine {
	t.Helper()
	line := &models.CartLine{UserID: user.ID, BookID: book.ID, Quantity: quantity}
	require.NoError(t, db.Create(line).Error)
	return line
}
