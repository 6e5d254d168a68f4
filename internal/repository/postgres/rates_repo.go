package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
)

type ratesRepo struct{ pool *pgxpool.Pool }

func (r *ratesRepo) Insert(ctx context.Context, rate models.Rate) error {
	if rate.ID == "" {
		rate.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rates(id, currency, usd_price, fetched_at)
		 VALUES($1, $2, $3, now())`,
		rate.ID, rate.Currency, rate.USDPrice,
	)
	return err
}

func (r *ratesRepo) Latest(ctx context.Context, currency string) (models.Rate, error) {
	var rate models.Rate
	err := r.pool.QueryRow(ctx,
		`SELECT id, currency, usd_price, fetched_at
		   FROM rates
		  WHERE currency=$1
		  ORDER BY fetched_at DESC
		  LIMIT 1`,
		currency,
	).Scan(&rate.ID, &rate.Currency, &rate.USDPrice, &rate.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Rate{}, repo.ErrNotFound
	}
	return rate, err
}
