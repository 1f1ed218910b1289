// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// Querier represents a database query executor (either *sql.DB or *sql.Tx).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages database transactions.
type TxManager interface {
	// WithTx executes the function within a database transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// WithTxRetry executes the function within a database transaction,
	// re-running the whole unit of work up to tries times if it fails.
	// Each attempt gets a fresh transaction; the last error is returned
	// once the attempts are exhausted.
	WithTxRetry(ctx context.Context, fn func(ctx context.Context) error, tries int) error
}

// sqlTxManager implements TxManager for SQL databases.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx executes the function within a database transaction.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txKey{}, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}

	return tx.Commit()
}

// WithTxRetry executes the function within a transaction up to tries times.
func (m *sqlTxManager) WithTxRetry(ctx context.Context, fn func(ctx context.Context) error, tries int) error {
	if tries < 1 {
		tries = 1
	}

	var err error
	for attempt := 0; attempt < tries; attempt++ {
		if err = m.WithTx(ctx, fn); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}

	return err
}

// GetTx retrieves a transaction from context, or returns the DB connection.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
