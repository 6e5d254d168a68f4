package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tonpad/deposit-backend/internal/metrics"
	"github.com/tonpad/deposit-backend/internal/worker"
)

// sweepBatchLimit bounds how many pending intents one pass examines.
const sweepBatchLimit = 500

// Sweeper re-runs reconciliation for every pending intent on a fixed
// interval. One ledger fetch per pass is shared by all intents in that pass.
type Sweeper struct {
	Recon    *ReconcileService
	Pool     *worker.Pool
	Interval time.Duration
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	timer := time.NewTimer(s.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.sweepOnce(ctx)
			timer.Reset(s.Interval)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	start := time.Now()

	pending, err := s.Recon.PendingIntents(ctx, sweepBatchLimit)
	if err != nil {
		slog.Error("sweep: list pending", "err", err)
		return
	}
	metrics.SweepPendingIntents.Set(float64(len(pending)))
	if len(pending) == 0 {
		metrics.SweepRunsTotal.Inc()
		return
	}

	transfers, err := s.Recon.ledger.RecentIncoming(ctx, s.Recon.projectWallet, s.Recon.fetchLimit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			metrics.UpstreamErrorsTotal.Inc()
			slog.Error("sweep: ledger fetch", "err", err)
		}
		return
	}

	// A failure on one intent must not starve the rest of the pass.
	var wg sync.WaitGroup
	for _, in := range pending {
		in := in
		wg.Add(1)
		s.Pool.Submit(func() {
			defer wg.Done()
			if _, err := s.Recon.reconcile(ctx, in, transfers); err != nil {
				slog.Error("sweep: reconcile", "intent_id", in.ID, "err", err)
			}
		})
	}
	wg.Wait()

	metrics.SweepRunsTotal.Inc()
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
}
