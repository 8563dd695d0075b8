package sqlstore

import "github.com/goliatone/go-bank-ledger/core"

var (
	_ core.LedgerStore   = (*LedgerStore)(nil)
	_ core.BalanceReader = (*LedgerStore)(nil)
	_ core.LedgerAuditor = (*LedgerStore)(nil)
	_ core.StoreProvider = (*RepositoryFactory)(nil)
)
