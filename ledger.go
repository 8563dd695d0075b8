// Package bankledger re-exports the core ledger surface and wires the
// command/query facade for embedding applications.
package bankledger

import "github.com/goliatone/go-bank-ledger/core"

type Config = core.Config

type RetryConfig = core.RetryConfig

type Option = core.Option

type Service = core.Service

type DepositInput = core.DepositInput
type DepositResult = core.DepositResult
type Ack = core.Ack

type Organization = core.Organization
type Payment = core.Payment
type BalanceLogEntry = core.BalanceLogEntry
type OrganizationBalance = core.OrganizationBalance
type AuditFinding = core.AuditFinding
type OperationType = core.OperationType

type LedgerStore = core.LedgerStore
type BalanceReader = core.BalanceReader
type LedgerAuditor = core.LedgerAuditor
type StoreProvider = core.StoreProvider
type MetricsRecorder = core.MetricsRecorder

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithLedgerStore       = core.WithLedgerStore
	WithBalanceReader     = core.WithBalanceReader
	WithLedgerAuditor     = core.WithLedgerAuditor
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
