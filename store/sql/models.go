package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type organizationRecord struct {
	bun.BaseModel `bun:"table:ledger_organizations,alias:lo"`

	INN       string          `bun:"inn,pk"`
	Balance   decimal.Decimal `bun:"balance,notnull"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type paymentRecord struct {
	bun.BaseModel `bun:"table:ledger_payments,alias:lp"`

	ID             string          `bun:"id,pk"`
	OperationID    string          `bun:"operation_id,notnull,unique"`
	Amount         decimal.Decimal `bun:"amount,notnull"`
	PayerINN       string          `bun:"payer_inn,notnull"`
	DocumentNumber string          `bun:"document_number,notnull"`
	DocumentDate   time.Time       `bun:"document_date,notnull"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type balanceLogRecord struct {
	bun.BaseModel `bun:"table:ledger_balance_log,alias:lbl"`

	ID              string          `bun:"id,pk"`
	OrganizationINN string          `bun:"organization_inn,notnull"`
	PaymentID       *string         `bun:"payment_id"`
	Amount          decimal.Decimal `bun:"amount,notnull"`
	OperationType   string          `bun:"operation_type,notnull"`
	Metadata        map[string]any  `bun:"metadata,type:jsonb,notnull"`
	CreatedAt       time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
