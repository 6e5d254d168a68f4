package repository

import (
	"context"
	"errors"

	"github.com/tonpad/deposit-backend/internal/models"
)

// ErrNotFound is returned by point lookups when no record exists.
var ErrNotFound = errors.New("repository: not found")

type Intents interface {
	// GetOrCreate inserts the intent with status pending if no record exists
	// for its id, and returns the stored record either way. The stored
	// matching keys win over the argument's on conflict.
	GetOrCreate(ctx context.Context, in models.DepositIntent) (models.DepositIntent, error)
	Get(ctx context.Context, id string) (models.DepositIntent, error)
	ListPending(ctx context.Context, limit int) ([]models.DepositIntent, error)
}

type Balances interface {
	Get(ctx context.Context, userID, currency string) (models.Balance, error)
	// Credit applies amount_nano += deltaNano atomically, creating the row at
	// zero first if absent. Concurrent credits to the same user must all land.
	Credit(ctx context.Context, userID, currency string, deltaNano int64) (models.Balance, error)
}

type Settlements interface {
	// SettleDeposit flips the intent from pending to success with txHash and
	// credits the user, in one transaction. Returns false when the intent was
	// no longer pending, in which case nothing is written.
	SettleDeposit(ctx context.Context, intentID, txHash, userID, currency string, deltaNano int64) (bool, error)
}

type Rates interface {
	Insert(ctx context.Context, r models.Rate) error
	Latest(ctx context.Context, currency string) (models.Rate, error)
}
