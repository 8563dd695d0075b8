package webhooks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bank-ledger/core"
)

func TestProcessorAppliesDeposit(t *testing.T) {
	service := newFakeDepositService()
	processor := NewProcessor(service)

	ack, err := processor.Process(context.Background(), validNotification())
	if err != nil {
		t.Fatalf("expected deposit to apply, got %v", err)
	}
	if ack.Duplicate {
		t.Fatalf("first delivery must not be reported as duplicate")
	}
	if !ack.Balance.Equal(decimal.RequireFromString("145000.00")) {
		t.Fatalf("expected balance 145000.00, got %s", ack.Balance)
	}
	if service.calls != 1 {
		t.Fatalf("expected one service call, got %d", service.calls)
	}
}

func TestProcessorIdempotentRedelivery(t *testing.T) {
	service := newFakeDepositService()
	processor := NewProcessor(service)
	ctx := context.Background()

	first, err := processor.Process(ctx, validNotification())
	if err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	second, err := processor.Process(ctx, validNotification())
	if err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if !second.Duplicate {
		t.Fatalf("expected redelivery to be acknowledged as duplicate")
	}
	if !second.Balance.Equal(first.Balance) {
		t.Fatalf("duplicate must not change the balance: %s vs %s", second.Balance, first.Balance)
	}
}

func TestProcessorRejectsWithoutServiceCall(t *testing.T) {
	service := newFakeDepositService()
	processor := NewProcessor(service)

	notification := validNotification()
	notification.Amount = "-100.00"

	if _, err := processor.Process(context.Background(), notification); err == nil {
		t.Fatalf("expected rejection")
	}
	if service.calls != 0 {
		t.Fatalf("rejected payload must not reach the service, got %d calls", service.calls)
	}
}

func TestProcessorPropagatesServiceError(t *testing.T) {
	service := newFakeDepositService()
	service.err = fmt.Errorf("store unavailable")
	processor := NewProcessor(service)

	if _, err := processor.Process(context.Background(), validNotification()); err == nil {
		t.Fatalf("expected service error to propagate")
	}
}

// fakeDepositService mirrors the dedupe contract: repeated operation ids
// return the current balance with the duplicate flag set.
type fakeDepositService struct {
	balances map[string]decimal.Decimal
	seen     map[string]bool
	calls    int
	err      error
}

func newFakeDepositService() *fakeDepositService {
	return &fakeDepositService{
		balances: map[string]decimal.Decimal{},
		seen:     map[string]bool{},
	}
}

func (s *fakeDepositService) ProcessDeposit(_ context.Context, in core.DepositInput) (core.Ack, error) {
	s.calls++
	if s.err != nil {
		return core.Ack{}, s.err
	}
	if s.seen[in.OperationID] {
		return core.Ack{
			OperationID: in.OperationID,
			PayerINN:    in.PayerINN,
			Balance:     s.balances[in.PayerINN],
			Duplicate:   true,
			ProcessedAt: time.Now().UTC(),
		}, nil
	}
	s.seen[in.OperationID] = true
	s.balances[in.PayerINN] = s.balances[in.PayerINN].Add(in.Amount)
	return core.Ack{
		OperationID: in.OperationID,
		PayerINN:    in.PayerINN,
		Balance:     s.balances[in.PayerINN],
		ProcessedAt: time.Now().UTC(),
	}, nil
}
