package services

import (
	"context"
	"sync"
	"testing"

	"github.com/tonpad/deposit-backend/internal/models"
	"github.com/tonpad/deposit-backend/internal/tonapi"
)

func TestSubmitDepositMatched(t *testing.T) {
	ledger := &fakeLedger{transfers: []models.Transfer{
		{Sender: "W", ValueNano: 2500000000, Hash: "h1"},
	}}
	svc, store := newTestService(ledger)
	ctx := context.Background()

	status, err := svc.SubmitDeposit(ctx, "u1", "W", 2.5, "i1")
	if err != nil {
		t.Fatalf("SubmitDeposit() error = %v", err)
	}
	if status != models.IntentSuccess {
		t.Fatalf("status = %v, want success", status)
	}

	b, err := svc.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if b.AmountNano != 2500000000 {
		t.Errorf("balance = %d, want 2500000000", b.AmountNano)
	}

	got, err := svc.Status(ctx, "i1")
	if err != nil || got != "success" {
		t.Errorf("Status() = %q, %v; want success", got, err)
	}
	in, _ := store.Get(ctx, "i1")
	if in.TxHash == nil || *in.TxHash != "h1" {
		t.Errorf("tx hash = %v, want h1", in.TxHash)
	}
}

func TestSubmitDepositNoMatchStaysPending(t *testing.T) {
	ledger := &fakeLedger{transfers: []models.Transfer{
		{Sender: "Wother", ValueNano: 1000000000, Hash: "hx"},
	}}
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	status, err := svc.SubmitDeposit(ctx, "u2", "W2", 1.0, "i2")
	if err != nil {
		t.Fatalf("SubmitDeposit() error = %v", err)
	}
	if status != models.IntentPending {
		t.Fatalf("status = %v, want pending", status)
	}

	got, _ := svc.Status(ctx, "i2")
	if got != "pending" {
		t.Errorf("Status() = %q, want pending", got)
	}

	b, _ := svc.Balance(ctx, "u2")
	if b.AmountNano != 0 {
		t.Errorf("balance mutated on unmatched intent: %d", b.AmountNano)
	}
}

func TestSubmitDepositRepeatedCreditsOnce(t *testing.T) {
	ledger := &fakeLedger{transfers: []models.Transfer{
		{Sender: "W", ValueNano: 2500000000, Hash: "h1"},
	}}
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status, err := svc.SubmitDeposit(ctx, "u1", "W", 2.5, "i1")
		if err != nil {
			t.Fatalf("attempt %d: error = %v", i, err)
		}
		if status != models.IntentSuccess {
			t.Fatalf("attempt %d: status = %v", i, status)
		}
	}

	b, _ := svc.Balance(ctx, "u1")
	if b.AmountNano != 2500000000 {
		t.Errorf("balance = %d after 5 submits, want exactly one credit", b.AmountNano)
	}
	// resolved intents short-circuit before any ledger I/O
	if n := ledger.fetchCount(); n != 1 {
		t.Errorf("ledger fetched %d times, want 1", n)
	}
}

func TestSubmitDepositConcurrentCreditsOnce(t *testing.T) {
	ledger := &fakeLedger{transfers: []models.Transfer{
		{Sender: "W", ValueNano: 500000000, Hash: "h9"},
	}}
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.SubmitDeposit(ctx, "u1", "W", 0.5, "i1")
		}()
	}
	wg.Wait()

	b, _ := svc.Balance(ctx, "u1")
	if b.AmountNano != 500000000 {
		t.Errorf("balance = %d under concurrency, want 500000000", b.AmountNano)
	}
}

func TestSubmitDepositUpstreamUnavailable(t *testing.T) {
	ledger := &fakeLedger{err: tonapi.ErrUpstreamUnavailable}
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	status, err := svc.SubmitDeposit(ctx, "u1", "W", 1.0, "i1")
	if !IsUpstreamUnavailable(err) {
		t.Fatalf("error = %v, want upstream unavailable", err)
	}
	if status != models.IntentPending {
		t.Errorf("status = %v, want pending", status)
	}

	// the intent survives the failed fetch and no balance moved
	got, _ := svc.Status(ctx, "i1")
	if got != "pending" {
		t.Errorf("Status() = %q, want pending", got)
	}
	b, _ := svc.Balance(ctx, "u1")
	if b.AmountNano != 0 {
		t.Errorf("balance mutated on upstream failure: %d", b.AmountNano)
	}
}

func TestStatusUnknownIntent(t *testing.T) {
	svc, _ := newTestService(&fakeLedger{})
	got, err := svc.Status(context.Background(), "never-submitted")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got != "not_found" {
		t.Errorf("Status() = %q, want not_found", got)
	}
}

func TestDistinctIntentsBothCredit(t *testing.T) {
	ledger := &fakeLedger{transfers: []models.Transfer{
		{Sender: "Wa", ValueNano: 1000000000, Hash: "ha"},
		{Sender: "Wb", ValueNano: 2000000000, Hash: "hb"},
	}}
	svc, _ := newTestService(ledger)
	ctx := context.Background()

	if st, _ := svc.SubmitDeposit(ctx, "u1", "Wa", 1.0, "ia"); st != models.IntentSuccess {
		t.Fatalf("ia status = %v", st)
	}
	if st, _ := svc.SubmitDeposit(ctx, "u1", "Wb", 2.0, "ib"); st != models.IntentSuccess {
		t.Fatalf("ib status = %v", st)
	}

	b, _ := svc.Balance(ctx, "u1")
	if b.AmountNano != 3000000000 {
		t.Errorf("balance = %d, want both credits to land", b.AmountNano)
	}
}

func TestMatchingKeysImmutableAfterCreate(t *testing.T) {
	ledger := &fakeLedger{}
	svc, store := newTestService(ledger)
	ctx := context.Background()

	if _, err := svc.SubmitDeposit(ctx, "u1", "W", 1.0, "i1"); err != nil {
		t.Fatal(err)
	}
	// re-submitting the same id with different keys must not rewrite them
	if _, err := svc.SubmitDeposit(ctx, "u1", "Wchanged", 9.0, "i1"); err != nil {
		t.Fatal(err)
	}

	in, _ := store.Get(ctx, "i1")
	if in.WalletAddress != "W" || in.AmountNano != 1000000000 {
		t.Errorf("matching keys rewritten: %+v", in)
	}
}
