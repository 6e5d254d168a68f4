package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
)

type intentsRepo struct{ pool *pgxpool.Pool }

func (r *intentsRepo) GetOrCreate(ctx context.Context, in models.DepositIntent) (models.DepositIntent, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO deposit_intents(id, user_id, wallet_address, amount_nano, status, created_at, updated_at)
		 VALUES($1, $2, $3, $4, 'pending', now(), now())
		 ON CONFLICT (id) DO NOTHING`,
		in.ID, in.UserID, in.WalletAddress, in.AmountNano,
	)
	if err != nil {
		return models.DepositIntent{}, err
	}
	return r.Get(ctx, in.ID)
}

func (r *intentsRepo) Get(ctx context.Context, id string) (models.DepositIntent, error) {
	var in models.DepositIntent
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, wallet_address, amount_nano, status, tx_hash, created_at, updated_at
		   FROM deposit_intents
		  WHERE id=$1`,
		id,
	).Scan(&in.ID, &in.UserID, &in.WalletAddress, &in.AmountNano, &in.Status, &in.TxHash, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DepositIntent{}, repo.ErrNotFound
	}
	return in, err
}

func (r *intentsRepo) ListPending(ctx context.Context, limit int) ([]models.DepositIntent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, wallet_address, amount_nano, status, tx_hash, created_at, updated_at
		   FROM deposit_intents
		  WHERE status='pending'
		  ORDER BY created_at ASC
		  LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DepositIntent
	for rows.Next() {
		var in models.DepositIntent
		if err := rows.Scan(&in.ID, &in.UserID, &in.WalletAddress, &in.AmountNano, &in.Status, &in.TxHash, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
