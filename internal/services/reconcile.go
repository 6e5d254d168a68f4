package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tonpad/deposit-backend/internal/matcher"
	"github.com/tonpad/deposit-backend/internal/metrics"
	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
	"github.com/tonpad/deposit-backend/internal/tonapi"
)

// Currency is the only asset this engine credits.
const Currency = "TON"

// Ledger is the read-only view of the external chain the service needs.
type Ledger interface {
	RecentIncoming(ctx context.Context, account string, limit int) ([]models.Transfer, error)
}

type ReconcileService struct {
	intents     repo.Intents
	balances    repo.Balances
	settlements repo.Settlements
	ledger      Ledger

	projectWallet string
	fetchLimit    int
}

func NewReconcileService(i repo.Intents, b repo.Balances, s repo.Settlements, l Ledger, projectWallet string, fetchLimit int) *ReconcileService {
	return &ReconcileService{
		intents:       i,
		balances:      b,
		settlements:   s,
		ledger:        l,
		projectWallet: projectWallet,
		fetchLimit:    fetchLimit,
	}
}

// SubmitDeposit is the immediate check path: load or create the intent and
// run one reconciliation attempt against a fresh ledger fetch.
//
// When the ledger is unreachable the intent stays pending and the wrapped
// tonapi.ErrUpstreamUnavailable is returned alongside the pending status.
func (s *ReconcileService) SubmitDeposit(ctx context.Context, userID, walletAddress string, amount float64, intentID string) (models.IntentStatus, error) {
	in, err := s.intents.GetOrCreate(ctx, models.DepositIntent{
		ID:            intentID,
		UserID:        userID,
		WalletAddress: walletAddress,
		AmountNano:    matcher.ToNano(amount),
	})
	if err != nil {
		metrics.DepositChecksTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("submit deposit: %w", err)
	}
	return s.check(ctx, in)
}

// check fetches the project wallet's recent transfers and reconciles one intent.
func (s *ReconcileService) check(ctx context.Context, in models.DepositIntent) (models.IntentStatus, error) {
	if in.Status == models.IntentSuccess {
		metrics.DepositChecksTotal.WithLabelValues("success").Inc()
		return models.IntentSuccess, nil
	}

	transfers, err := s.ledger.RecentIncoming(ctx, s.projectWallet, s.fetchLimit)
	if err != nil {
		metrics.UpstreamErrorsTotal.Inc()
		metrics.DepositChecksTotal.WithLabelValues("upstream_error").Inc()
		return models.IntentPending, fmt.Errorf("check intent %s: %w", in.ID, err)
	}
	return s.reconcile(ctx, in, transfers)
}

// reconcile matches one intent against an already-fetched transfer list and
// settles it on a match. Safe to run concurrently for the same intent id: the
// settlement transaction is gated on the status still being pending, so only
// one caller commits the credit.
func (s *ReconcileService) reconcile(ctx context.Context, in models.DepositIntent, transfers []models.Transfer) (models.IntentStatus, error) {
	if in.Status == models.IntentSuccess {
		metrics.DepositChecksTotal.WithLabelValues("success").Inc()
		return models.IntentSuccess, nil
	}

	tr, ok := matcher.Match(in.WalletAddress, in.AmountNano, transfers)
	if !ok {
		metrics.DepositChecksTotal.WithLabelValues("pending").Inc()
		return models.IntentPending, nil
	}

	settled, err := s.settlements.SettleDeposit(ctx, in.ID, tr.Hash, in.UserID, Currency, in.AmountNano)
	if err != nil {
		metrics.DepositChecksTotal.WithLabelValues("error").Inc()
		return models.IntentPending, fmt.Errorf("settle intent %s: %w", in.ID, err)
	}
	if settled {
		metrics.CreditedNanoTotal.Add(float64(in.AmountNano))
		slog.Info("deposit credited",
			"intent_id", in.ID, "user_id", in.UserID, "tx_hash", tr.Hash, "amount_nano", in.AmountNano)
	}
	// not settled means another check won the flip; either way it is success now
	metrics.DepositChecksTotal.WithLabelValues("success").Inc()
	return models.IntentSuccess, nil
}

// Status reports an intent's current state without mutating anything.
// An unknown id is a valid answer, not an error.
func (s *ReconcileService) Status(ctx context.Context, intentID string) (string, error) {
	in, err := s.intents.Get(ctx, intentID)
	if errors.Is(err, repo.ErrNotFound) {
		return "not_found", nil
	}
	if err != nil {
		return "", err
	}
	return string(in.Status), nil
}

// Balance returns the user's TON balance, zero if the user has none yet.
func (s *ReconcileService) Balance(ctx context.Context, userID string) (models.Balance, error) {
	b, err := s.balances.Get(ctx, userID, Currency)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Balance{UserID: userID, Currency: Currency}, nil
	}
	return b, err
}

// PendingIntents lists unmatched intents for operator triage.
func (s *ReconcileService) PendingIntents(ctx context.Context, limit int) ([]models.DepositIntent, error) {
	return s.intents.ListPending(ctx, limit)
}

// IsUpstreamUnavailable reports whether err came from the external ledger.
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, tonapi.ErrUpstreamUnavailable)
}
