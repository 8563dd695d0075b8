package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bank-ledger/core"
	"github.com/goliatone/go-bank-ledger/webhooks"
)

func notificationFixture() webhooks.Notification {
	return webhooks.Notification{
		OperationID:    "ccf1b3b0-8b34-4c1d-9a4e-6f42c8a07f11",
		Amount:         "145000.00",
		PayerINN:       "7712345678",
		DocumentNumber: "PAY-328",
		DocumentDate:   "2024-04-27T21:00:00Z",
	}
}

func TestProcessPaymentMessageValidate(t *testing.T) {
	msg := ProcessPaymentMessage{Notification: notificationFixture()}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}

	msg.Notification.OperationID = ""
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected missing operation id to fail")
	}

	msg = ProcessPaymentMessage{Notification: notificationFixture()}
	msg.Notification.PayerINN = "  "
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected missing payer inn to fail")
	}
}

func TestProcessPaymentCommandExecute(t *testing.T) {
	processor := &stubProcessor{
		ack: core.Ack{
			OperationID: "ccf1b3b0-8b34-4c1d-9a4e-6f42c8a07f11",
			PayerINN:    "7712345678",
			Balance:     decimal.RequireFromString("145000.00"),
			ProcessedAt: time.Now().UTC(),
		},
	}
	handler := NewProcessPaymentCommand(processor)

	collector := gocmd.NewResult[core.Ack]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := handler.Execute(ctx, ProcessPaymentMessage{Notification: notificationFixture()}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if processor.calls != 1 {
		t.Fatalf("expected one processor call, got %d", processor.calls)
	}

	ack, ok := collector.Load()
	if !ok {
		t.Fatalf("expected collected ack")
	}
	if !ack.Balance.Equal(decimal.RequireFromString("145000.00")) {
		t.Fatalf("unexpected ack balance %s", ack.Balance)
	}
}

func TestProcessPaymentCommandWithoutCollector(t *testing.T) {
	processor := &stubProcessor{}
	handler := NewProcessPaymentCommand(processor)

	if err := handler.Execute(context.Background(), ProcessPaymentMessage{Notification: notificationFixture()}); err != nil {
		t.Fatalf("execute without collector failed: %v", err)
	}
}

func TestProcessPaymentCommandRequiresProcessor(t *testing.T) {
	handler := NewProcessPaymentCommand(nil)
	if err := handler.Execute(context.Background(), ProcessPaymentMessage{Notification: notificationFixture()}); err == nil {
		t.Fatalf("expected missing processor to fail")
	}
}

func TestProcessPaymentCommandPropagatesError(t *testing.T) {
	processor := &stubProcessor{err: fmt.Errorf("store unavailable")}
	handler := NewProcessPaymentCommand(processor)

	if err := handler.Execute(context.Background(), ProcessPaymentMessage{Notification: notificationFixture()}); err == nil {
		t.Fatalf("expected processor error to propagate")
	}
}

type stubProcessor struct {
	ack   core.Ack
	err   error
	calls int
}

func (p *stubProcessor) Process(context.Context, webhooks.Notification) (core.Ack, error) {
	p.calls++
	if p.err != nil {
		return core.Ack{}, p.err
	}
	return p.ack, nil
}
