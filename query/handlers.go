package query

import (
	"context"

	"github.com/goliatone/go-bank-ledger/core"
)

type BalanceReader interface {
	GetBalance(ctx context.Context, inn string) (core.OrganizationBalance, error)
}

type LedgerVerifier interface {
	VerifyLedger(ctx context.Context) ([]core.AuditFinding, error)
}

type GetBalanceQuery struct {
	reader BalanceReader
}

func NewGetBalanceQuery(reader BalanceReader) *GetBalanceQuery {
	return &GetBalanceQuery{reader: reader}
}

func (q *GetBalanceQuery) Query(ctx context.Context, msg GetBalanceMessage) (core.OrganizationBalance, error) {
	if q == nil || q.reader == nil {
		return core.OrganizationBalance{}, queryDependencyError("query: balance reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.OrganizationBalance{}, err
	}
	return q.reader.GetBalance(ctx, msg.INN)
}

type VerifyLedgerQuery struct {
	verifier LedgerVerifier
}

func NewVerifyLedgerQuery(verifier LedgerVerifier) *VerifyLedgerQuery {
	return &VerifyLedgerQuery{verifier: verifier}
}

func (q *VerifyLedgerQuery) Query(ctx context.Context, msg VerifyLedgerMessage) ([]core.AuditFinding, error) {
	if q == nil || q.verifier == nil {
		return nil, queryDependencyError("query: ledger verifier is required")
	}
	return q.verifier.VerifyLedger(ctx)
}
