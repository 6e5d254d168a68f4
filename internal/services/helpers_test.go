package services

import (
	"context"
	"sync"
	"time"

	"github.com/tonpad/deposit-backend/internal/models"
	repo "github.com/tonpad/deposit-backend/internal/repository"
)

// memStore is an in-memory double implementing the Intents, Balances and
// Settlements interfaces with the same gating semantics as the postgres repos.
type memStore struct {
	mu       sync.Mutex
	intents  map[string]models.DepositIntent
	balances map[string]int64 // userID|currency -> nano
}

func newMemStore() *memStore {
	return &memStore{
		intents:  make(map[string]models.DepositIntent),
		balances: make(map[string]int64),
	}
}

func (m *memStore) GetOrCreate(_ context.Context, in models.DepositIntent) (models.DepositIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.intents[in.ID]; ok {
		return existing, nil
	}
	in.Status = models.IntentPending
	in.CreatedAt = time.Now()
	in.UpdatedAt = in.CreatedAt
	m.intents[in.ID] = in
	return in, nil
}

func (m *memStore) Get(_ context.Context, id string) (models.DepositIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[id]
	if !ok {
		return models.DepositIntent{}, repo.ErrNotFound
	}
	return in, nil
}

func (m *memStore) ListPending(_ context.Context, limit int) ([]models.DepositIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DepositIntent
	for _, in := range m.intents {
		if in.Status == models.IntentPending && len(out) < limit {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memStore) GetBalance(_ context.Context, userID, currency string) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nano, ok := m.balances[userID+"|"+currency]
	if !ok {
		return models.Balance{}, repo.ErrNotFound
	}
	return models.Balance{UserID: userID, Currency: currency, AmountNano: nano}, nil
}

func (m *memStore) Credit(_ context.Context, userID, currency string, deltaNano int64) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "|" + currency
	m.balances[key] += deltaNano
	return models.Balance{UserID: userID, Currency: currency, AmountNano: m.balances[key]}, nil
}

func (m *memStore) SettleDeposit(_ context.Context, intentID, txHash, userID, currency string, deltaNano int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[intentID]
	if !ok || in.Status != models.IntentPending {
		return false, nil
	}
	in.Status = models.IntentSuccess
	in.TxHash = &txHash
	in.UpdatedAt = time.Now()
	m.intents[intentID] = in
	m.balances[userID+"|"+currency] += deltaNano
	return true, nil
}

// balancesView adapts memStore to the repo.Balances interface, whose Get has
// a different name on the double to avoid clashing with the intent Get.
type balancesView struct{ *memStore }

func (v balancesView) Get(ctx context.Context, userID, currency string) (models.Balance, error) {
	return v.GetBalance(ctx, userID, currency)
}

// fakeLedger serves a scripted transfer window and counts fetches.
type fakeLedger struct {
	mu        sync.Mutex
	transfers []models.Transfer
	err       error
	fetches   int
}

func (f *fakeLedger) RecentIncoming(context.Context, string, int) ([]models.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Transfer, len(f.transfers))
	copy(out, f.transfers)
	return out, nil
}

func (f *fakeLedger) set(transfers []models.Transfer, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = transfers
	f.err = err
}

func (f *fakeLedger) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func newTestService(ledger Ledger) (*ReconcileService, *memStore) {
	store := newMemStore()
	svc := NewReconcileService(store, balancesView{store}, store, ledger, "EQproject", 30)
	return svc, store
}
