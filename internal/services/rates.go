package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
)

// PriceSource reads a currency's USD price from an external service.
type PriceSource interface {
	USDPrice(ctx context.Context, currency string) (float64, error)
}

// RateRefresher snapshots the TON/USD rate on its own schedule. It shares no
// state with reconciliation; it only coexists as a sibling scheduled task.
type RateRefresher struct {
	Source   PriceSource
	Rates    repo.Rates
	Interval time.Duration
}

// Run blocks until ctx is done. The first refresh fires immediately.
func (r *RateRefresher) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.refreshOnce(ctx)
			timer.Reset(r.Interval)
		}
	}
}

func (r *RateRefresher) refreshOnce(ctx context.Context) {
	price, err := r.Source.USDPrice(ctx, Currency)
	if err != nil {
		slog.Error("rate refresh: fetch", "err", err)
		return
	}
	if err := r.Rates.Insert(ctx, models.Rate{Currency: Currency, USDPrice: price}); err != nil {
		slog.Error("rate refresh: store", "err", err)
		return
	}
	slog.Debug("rate refreshed", "currency", Currency, "usd_price", price)
}
