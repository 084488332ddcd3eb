// Package postgres implements the store interfaces against PostgreSQL using
// pgx. Every balance-validating mutation locks the rows it reads with
// SELECT ... FOR UPDATE and runs its plan callback inside the transaction, so
// validation and commit see the same state.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/TrekLedger/trek-ledger-backend/logger"
)

// DB is the subset of pgxpool.Pool the stores use. pgxmock's pool satisfies
// it, which is what the store tests run against.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queryer is the read surface shared by DB and pgx.Tx, so snapshot queries can
// run either standalone or inside a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFn is a function executed within a database transaction.
type TxFn func(tx pgx.Tx) error

// WithTx executes fn within a transaction, handling begin, commit and
// rollback. An error from fn rolls everything back and is returned unchanged.
func WithTx(ctx context.Context, db DB, fn TxFn) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		// Rollback after commit is a no-op returning pgx.ErrTxClosed.
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			logger.GetLogger().Errorw("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
