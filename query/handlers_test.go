package query

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bank-ledger/core"
)

func TestGetBalanceMessageValidate(t *testing.T) {
	if err := (GetBalanceMessage{INN: "7712345678"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}

	err := (GetBalanceMessage{INN: "bad"}).Validate()
	if err == nil {
		t.Fatalf("expected invalid inn to fail")
	}
	var rich *goerrors.Error
	if !errors.As(err, &rich) || rich.TextCode != core.LedgerErrorBadInput {
		t.Fatalf("expected bad input envelope, got %v", err)
	}
}

func TestGetBalanceQuery(t *testing.T) {
	reader := &stubReader{
		balance: core.OrganizationBalance{INN: "7712345678", Balance: decimal.RequireFromString("145000.00")},
	}
	handler := NewGetBalanceQuery(reader)

	balance, err := handler.Query(context.Background(), GetBalanceMessage{INN: "7712345678"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("145000.00")) {
		t.Fatalf("unexpected balance %s", balance.Balance)
	}
}

func TestGetBalanceQueryValidatesBeforeRead(t *testing.T) {
	reader := &stubReader{}
	handler := NewGetBalanceQuery(reader)

	if _, err := handler.Query(context.Background(), GetBalanceMessage{INN: "bad"}); err == nil {
		t.Fatalf("expected validation failure")
	}
	if reader.calls != 0 {
		t.Fatalf("reader must not run for invalid messages, got %d calls", reader.calls)
	}
}

func TestGetBalanceQueryRequiresReader(t *testing.T) {
	handler := NewGetBalanceQuery(nil)
	if _, err := handler.Query(context.Background(), GetBalanceMessage{INN: "7712345678"}); err == nil {
		t.Fatalf("expected missing reader to fail")
	}
}

func TestVerifyLedgerQuery(t *testing.T) {
	verifier := &stubVerifier{
		findings: []core.AuditFinding{{INN: "7712345678"}},
	}
	handler := NewVerifyLedgerQuery(verifier)

	findings, err := handler.Query(context.Background(), VerifyLedgerMessage{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("unexpected findings %#v", findings)
	}

	empty := NewVerifyLedgerQuery(nil)
	if _, err := empty.Query(context.Background(), VerifyLedgerMessage{}); err == nil {
		t.Fatalf("expected missing verifier to fail")
	}
}

type stubReader struct {
	balance core.OrganizationBalance
	err     error
	calls   int
}

func (r *stubReader) GetBalance(context.Context, string) (core.OrganizationBalance, error) {
	r.calls++
	if r.err != nil {
		return core.OrganizationBalance{}, r.err
	}
	return r.balance, nil
}

type stubVerifier struct {
	findings []core.AuditFinding
	err      error
}

func (v *stubVerifier) VerifyLedger(context.Context) ([]core.AuditFinding, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.findings, nil
}
