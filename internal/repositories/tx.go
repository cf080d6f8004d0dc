package repositories

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/errs"

	"gorm.io/gorm"
)

type txKey struct{}

// ContextWithTx returns a context carrying tx. Repositories called with that context
// run their statements inside tx.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, or nil.
func TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// conn resolves the handle a repository should use for ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}

// GORMTxManager runs units of work inside a database transaction.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

// WithinTx calls fn with a context bound to a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic. A context that already carries a
// transaction is reused as-is.
func (m *GORMTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTx(ctx, tx))
	})
}

// translate maps gorm sentinel errors onto the service error taxonomy.
func translate(err error, format string, args ...interface{}) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, errs.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, errs.ErrConflict)
	default:
		return fmt.Errorf("failed to access %s: %w", what, err)
	}
}
