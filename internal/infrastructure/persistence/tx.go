package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTransactionManager runs application-service work units inside one
// database transaction. The transaction handle travels in the context so
// repositories participate without knowing about transaction boundaries.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Execute runs fn inside a transaction. Nested calls join the transaction
// already carried by the context instead of opening a new one.
func (m *GormTransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// txFromContext returns the transaction carried by ctx, or nil
func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// dbFromContext resolves the DB handle repositories should use: the
// context's transaction when one is open, the base connection otherwise.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
