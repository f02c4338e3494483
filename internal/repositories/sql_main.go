package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flowfin/go-conciliador/internal/config"

	"go.uber.org/zap"
)

type sqlRepo struct {
	r *Repository
}

type Repository struct {
	dbWrite *sql.DB
	dbRead  *sql.DB
	config  config.Config
	common  sqlRepo

	rrr *reconRunRepo
}

func NewSQLRepository(dbWrite, dbRead *sql.DB, cfg config.Config) *Repository {
	rtx := &Repository{
		dbWrite: dbWrite,
		dbRead:  dbRead,
		config:  cfg,
	}
	rtx.common.r = rtx
	rtx.rrr = (*reconRunRepo)(&rtx.common)

	return rtx
}

type SQLRepository interface {
	Atomic(ctx context.Context, steps func(ctx context.Context, r SQLRepository) error) error
	GetReconRunRepository() ReconRunRepository
}

var _ SQLRepository = (*Repository)(nil)

func (r *Repository) GetReconRunRepository() ReconRunRepository {
	return r.rrr
}

func (r *Repository) Atomic(ctx context.Context, steps func(ctx context.Context, r SQLRepository) error) (err error) {
	tx, err := r.dbWrite.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic happened because: %v", p)
			zap.L().Error("[DATABASE.TRANSACTION.PANIC]", zap.Error(err))
		} else if err != nil {
			_ = tx.Rollback()
			zap.L().Warn("[DATABASE.TRANSACTION.ROLLBACK]", zap.Error(err))
		} else {
			err = tx.Commit()
		}
	}()

	err = steps(injectTx(ctx, tx), r)
	return err
}

// dbExecutor is satisfied by *sql.DB and *sql.Tx.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txContextKey struct{}

func injectTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// extractTxWrite returns the transaction bound to ctx by Atomic, falling
// back to the write pool.
func (r *Repository) extractTxWrite(ctx context.Context) dbExecutor {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.dbWrite
}

// extractTxRead returns the transaction bound to ctx by Atomic, falling
// back to the read pool.
func (r *Repository) extractTxRead(ctx context.Context) dbExecutor {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.dbRead
}
