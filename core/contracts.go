package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/shopspring/decimal"
)

// DepositInput is the validated payload handed to the store's transactional
// deposit operation. OperationID has already passed UUID validation.
type DepositInput struct {
	OperationID    string
	PayerINN       string
	Amount         decimal.Decimal
	DocumentNumber string
	DocumentDate   time.Time
	Metadata       map[string]any
}

// DepositResult reports what a deposit transaction committed. Duplicate means
// the operation id had already been applied and no state changed.
type DepositResult struct {
	Organization Organization
	Payment      Payment
	LogEntry     BalanceLogEntry
	Duplicate    bool
}

// Ack is the processor's acknowledgment; transports only need the status,
// the rest is for observability.
type Ack struct {
	OperationID string
	PayerINN    string
	Balance     decimal.Decimal
	Duplicate   bool
	ProcessedAt time.Time
}

// LedgerStore is the durable-store collaborator. Implementations must run
// ApplyDeposit atomically: fetch-or-create organization, insert payment,
// increment balance under row lock, append the log entry, all or nothing.
// A concurrent insert of the same operation id must surface
// ErrDuplicateOperation, never a partial write.
type LedgerStore interface {
	ApplyDeposit(ctx context.Context, in DepositInput) (DepositResult, error)
	GetOrganization(ctx context.Context, inn string) (Organization, error)
}

// BalanceReader serves read-after-write consistent balance lookups.
type BalanceReader interface {
	GetBalance(ctx context.Context, inn string) (OrganizationBalance, error)
}

// LedgerAuditor recomputes the signed log sums and reports organizations
// whose balance drifted.
type LedgerAuditor interface {
	AuditBalances(ctx context.Context) ([]AuditFinding, error)
}

// StoreProvider is what repository factories hand to the service builder.
type StoreProvider interface {
	LedgerStore() LedgerStore
	BalanceReader() BalanceReader
	LedgerAuditor() LedgerAuditor
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
