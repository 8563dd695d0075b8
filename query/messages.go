package query

import (
	"github.com/goliatone/go-bank-ledger/core"
)

const (
	TypeGetBalance   = "ledger.query.balance.get"
	TypeVerifyLedger = "ledger.query.audit.verify"
)

type GetBalanceMessage struct {
	INN string
}

func (GetBalanceMessage) Type() string { return TypeGetBalance }

func (m GetBalanceMessage) Validate() error {
	if err := core.ValidateINN(m.INN); err != nil {
		return queryValidationError("inn", "inn must be a numeric string of 10 to 12 digits")
	}
	return nil
}

type VerifyLedgerMessage struct{}

func (VerifyLedgerMessage) Type() string { return TypeVerifyLedger }

func (VerifyLedgerMessage) Validate() error { return nil }
