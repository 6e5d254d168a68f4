package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/tonpad/deposit-backend/internal/repository"
)

type Repositories struct {
	Intents     repo.Intents
	Balances    repo.Balances
	Settlements repo.Settlements
	Rates       repo.Rates
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Intents:     &intentsRepo{pool},
		Balances:    &balancesRepo{pool},
		Settlements: &settlementsRepo{pool},
		Rates:       &ratesRepo{pool},
	}
}
