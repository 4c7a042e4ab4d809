package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs functions inside database transactions. The
// transaction travels in the context so repositories pick it up; calling
// ExecTx again with a transactional context opens a savepoint.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a new gorm-backed TransactionManager
func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

// ExecTx executes fn within a transaction (or savepoint when nested)
func (m *gormTransactionManager) ExecTx(ctx context.Context, fn TxFn) error {
	return conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction stored in ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
