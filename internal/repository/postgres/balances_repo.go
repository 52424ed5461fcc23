package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paltabank/bank-api/internal/models"
	repo "github.com/paltabank/bank-api/internal/repository"
)

type balancesRepo struct{ pool *pgxpool.Pool }

func (r *balancesRepo) Get(ctx context.Context, userID string) (models.Balance, error) {
	return scanBalance(ctx, r.pool, userID)
}

func (r *balancesRepo) InTx(ctx context.Context, fn func(repo.BalanceTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(&balanceTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type balanceTx struct{ tx pgx.Tx }

func (t *balanceTx) Get(ctx context.Context, userID string) (models.Balance, error) {
	return scanBalance(ctx, t.tx, userID)
}

func (t *balanceTx) CompareAndSet(ctx context.Context, userID string, expected, next decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE balances
		    SET amount = $3,
		        updated_at = now()
		  WHERE user_id = $1
		    AND amount = $2`,
		userID, expected, next,
	)
	if err != nil {
		return err
	}
	// Zero rows means the amount moved since our read: a lost update we
	// refuse to apply, not an I/O failure.
	if tag.RowsAffected() == 0 {
		return repo.ErrConflict
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanBalance(ctx context.Context, q querier, userID string) (models.Balance, error) {
	var b models.Balance
	err := q.QueryRow(ctx,
		`SELECT user_id, amount, updated_at FROM balances WHERE user_id=$1`,
		userID,
	).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, err
}
