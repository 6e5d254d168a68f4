package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tonpad/deposit-backend/internal/api"
	"github.com/tonpad/deposit-backend/internal/config"
	"github.com/tonpad/deposit-backend/internal/db"
	"github.com/tonpad/deposit-backend/internal/logger"
	"github.com/tonpad/deposit-backend/internal/metrics"
	"github.com/tonpad/deposit-backend/internal/repository/postgres"
	"github.com/tonpad/deposit-backend/internal/services"
	"github.com/tonpad/deposit-backend/internal/tonapi"
	"github.com/tonpad/deposit-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	if cfg.ProjectWallet == "" {
		log.Error("PROJECT_WALLET is required")
		os.Exit(1)
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	ledger := tonapi.New(cfg.TonAPIBaseURL, cfg.TonAPIKey)
	wp := worker.NewPool(4)
	defer wp.Stop()

	reconSvc := services.NewReconcileService(
		repos.Intents,
		repos.Balances,
		repos.Settlements,
		ledger,
		cfg.ProjectWallet,
		cfg.TxFetchLimit,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(cfg, reconSvc, repos.Rates),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		sweeper := &services.Sweeper{Recon: reconSvc, Pool: wp, Interval: cfg.SweepInterval}
		log.Info("sweeper starting", "interval", cfg.SweepInterval)
		sweeper.Run(egctx)
		return nil
	})

	eg.Go(func() error {
		refresher := &services.RateRefresher{Source: ledger, Rates: repos.Rates, Interval: cfg.RateRefreshInterval}
		refresher.Run(egctx)
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}
