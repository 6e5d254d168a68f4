package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
)

type balancesRepo struct{ pool *pgxpool.Pool }

func (r *balancesRepo) Get(ctx context.Context, userID, currency string) (models.Balance, error) {
	var b models.Balance
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, currency, amount_nano, last_updated_at
		   FROM balances
		  WHERE user_id=$1 AND currency=$2`,
		userID, currency,
	).Scan(&b.UserID, &b.Currency, &b.AmountNano, &b.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, err
}

func (r *balancesRepo) Credit(ctx context.Context, userID, currency string, deltaNano int64) (models.Balance, error) {
	var b models.Balance
	err := r.pool.QueryRow(ctx,
		`INSERT INTO balances(user_id, currency, amount_nano, last_updated_at)
		 VALUES($1, $2, $3, now())
		 ON CONFLICT (user_id, currency) DO UPDATE
		    SET amount_nano = balances.amount_nano + EXCLUDED.amount_nano,
		        last_updated_at = now()
		 RETURNING user_id, currency, amount_nano, last_updated_at`,
		userID, currency, deltaNano,
	).Scan(&b.UserID, &b.Currency, &b.AmountNano, &b.LastUpdatedAt)
	return b, err
}
