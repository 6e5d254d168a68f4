package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settlementsRepo struct{ pool *pgxpool.Pool }

// serialization_failure and deadlock_detected are retried; anything else is not.
const maxTxRetries = 3

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func (r *settlementsRepo) SettleDeposit(ctx context.Context, intentID, txHash, userID, currency string, deltaNano int64) (bool, error) {
	var settled bool
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		settled, err = r.settleOnce(ctx, intentID, txHash, userID, currency, deltaNano)
		if err == nil || !retryable(err) {
			return settled, err
		}
	}
	return false, err
}

func (r *settlementsRepo) settleOnce(ctx context.Context, intentID, txHash, userID, currency string, deltaNano int64) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The flip is the gate: it only fires while the intent is still pending,
	// so a concurrent immediate check and sweep can both reach here but only
	// one commits the credit.
	tag, err := tx.Exec(ctx,
		`UPDATE deposit_intents
		    SET status='success', tx_hash=$2, updated_at=now()
		  WHERE id=$1 AND status='pending'`,
		intentID, txHash,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO balances(user_id, currency, amount_nano, last_updated_at)
		 VALUES($1, $2, $3, now())
		 ON CONFLICT (user_id, currency) DO UPDATE
		    SET amount_nano = balances.amount_nano + EXCLUDED.amount_nano,
		        last_updated_at = now()`,
		userID, currency, deltaNano,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
