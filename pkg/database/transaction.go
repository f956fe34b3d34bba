package database

import (
	"context"
	"database/sql"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type contextKey string

const txKey contextKey = "database-tx"

// Tx is the transaction surface used by repositories
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transaction wraps a sqlx transaction. Commit and Rollback are no-ops
// when the transaction was inherited from the context, so nested callers
// can defer Rollback safely while the outermost owner decides the outcome.
type Transaction struct {
	*sqlx.Tx
	logger   ectologger.Logger
	owned    bool
	isClosed bool
}

// GetTx returns the transaction stashed in ctx when one exists, otherwise
// begins a new one and stashes it. The returned context must be used for
// any nested GetTx calls.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if existing, ok := ctx.Value(txKey).(*Transaction); ok && !existing.isClosed {
		return ctx, &Transaction{
			Tx:     existing.Tx,
			logger: logger,
			owned:  false,
		}, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return ctx, nil, err
	}

	tx := &Transaction{
		Tx:     sqlxTx,
		logger: logger,
		owned:  true,
	}

	ctx = context.WithValue(ctx, txKey, tx)
	return ctx, tx, nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if !t.owned || t.isClosed {
		return nil
	}
	t.isClosed = true
	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("error committing transaction")
		return err
	}
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.owned || t.isClosed {
		return nil
	}
	t.isClosed = true
	if err := t.Tx.Rollback(); err != nil && err != sql.ErrTxDone {
		t.logger.WithContext(ctx).WithError(err).Error("error rolling back transaction")
		return err
	}
	return nil
}
