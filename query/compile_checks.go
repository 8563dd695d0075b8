package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-bank-ledger/core"
)

var (
	_ gocmd.Querier[GetBalanceMessage, core.OrganizationBalance] = (*GetBalanceQuery)(nil)
	_ gocmd.Querier[VerifyLedgerMessage, []core.AuditFinding]    = (*VerifyLedgerQuery)(nil)
)
