package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-bank-ledger/core"
)

// LedgerStore implements the transactional deposit contract on bun. The
// unique constraint on ledger_payments.operation_id is the race guard: a
// losing concurrent writer sees the violation, the transaction rolls back,
// and the delivery resolves as a duplicate.
type LedgerStore struct {
	db            *bun.DB
	organizations repository.Repository[*organizationRecord]
	payments      repository.Repository[*paymentRecord]
	logs          repository.Repository[*balanceLogRecord]
}

func NewLedgerStore(db *bun.DB) (*LedgerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	organizations := repository.NewRepository[*organizationRecord](db, organizationHandlers())
	payments := repository.NewRepository[*paymentRecord](db, paymentHandlers())
	logs := repository.NewRepository[*balanceLogRecord](db, balanceLogHandlers())
	for name, validator := range map[string]any{
		"organization": organizations,
		"payment":      payments,
		"balance log":  logs,
	} {
		if v, ok := validator.(repository.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("sqlstore: invalid %s repository wiring: %w", name, err)
			}
		}
	}
	return &LedgerStore{
		db:            db,
		organizations: organizations,
		payments:      payments,
		logs:          logs,
	}, nil
}

func (s *LedgerStore) DB() *bun.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *LedgerStore) ApplyDeposit(ctx context.Context, in core.DepositInput) (core.DepositResult, error) {
	if s == nil || s.db == nil {
		return core.DepositResult{}, fmt.Errorf("sqlstore: ledger store is not configured")
	}
	operationID := strings.TrimSpace(in.OperationID)
	if operationID == "" {
		return core.DepositResult{}, fmt.Errorf("sqlstore: operation id is required")
	}
	if err := core.ValidateINN(in.PayerINN); err != nil {
		return core.DepositResult{}, err
	}
	if err := core.ValidateAmount(in.Amount); err != nil {
		return core.DepositResult{}, err
	}

	// Cheap duplicate check before opening a write transaction. The unique
	// constraint below still guards the check-then-act race.
	if existing, err := s.findPayment(ctx, operationID); err == nil {
		return s.duplicateResult(ctx, existing)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return core.DepositResult{}, err
	}

	now := time.Now().UTC()
	var result core.DepositResult
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(&organizationRecord{
				INN:       in.PayerINN,
				Balance:   decimal.Zero,
				CreatedAt: now,
				UpdatedAt: now,
			}).
			On("CONFLICT (inn) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		payment, err := s.payments.CreateTx(ctx, tx, &paymentRecord{
			ID:             uuid.NewString(),
			OperationID:    operationID,
			Amount:         in.Amount,
			PayerINN:       in.PayerINN,
			DocumentNumber: strings.TrimSpace(in.DocumentNumber),
			DocumentDate:   in.DocumentDate.UTC(),
			CreatedAt:      now,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", core.ErrDuplicateOperation, operationID)
			}
			return err
		}

		organization := &organizationRecord{}
		selectOrg := tx.NewSelect().
			Model(organization).
			Where("?TableAlias.inn = ?", in.PayerINN)
		if s.db.Dialect().Name() == dialect.PG {
			selectOrg = selectOrg.For("UPDATE")
		}
		if err := selectOrg.Scan(ctx); err != nil {
			return err
		}

		organization.Balance = organization.Balance.Add(in.Amount)
		organization.UpdatedAt = now
		if _, err := tx.NewUpdate().
			Model(organization).
			Column("balance", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		paymentID := payment.ID
		entry, err := s.logs.CreateTx(ctx, tx, &balanceLogRecord{
			ID:              uuid.NewString(),
			OrganizationINN: in.PayerINN,
			PaymentID:       &paymentID,
			Amount:          in.Amount,
			OperationType:   string(core.OperationDeposit),
			Metadata:        ensureMetadata(in.Metadata),
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}

		result = core.DepositResult{
			Organization: organizationToDomain(organization),
			Payment:      paymentToDomain(payment),
			LogEntry:     balanceLogToDomain(entry),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateOperation) || isUniqueViolation(err) {
			existing, findErr := s.findPayment(ctx, operationID)
			if findErr != nil {
				return core.DepositResult{}, fmt.Errorf(
					"sqlstore: duplicate operation %s but payment row missing: %w", operationID, findErr)
			}
			return s.duplicateResult(ctx, existing)
		}
		return core.DepositResult{}, err
	}
	return result, nil
}

func (s *LedgerStore) GetOrganization(ctx context.Context, inn string) (core.Organization, error) {
	if s == nil || s.db == nil {
		return core.Organization{}, fmt.Errorf("sqlstore: ledger store is not configured")
	}
	record := &organizationRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.inn = ?", strings.TrimSpace(inn)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Organization{}, fmt.Errorf("%w: %s", core.ErrOrganizationNotFound, inn)
		}
		return core.Organization{}, err
	}
	return organizationToDomain(record), nil
}

// GetBalance satisfies core.BalanceReader; reads always hit the store so
// results reflect the latest committed transaction.
func (s *LedgerStore) GetBalance(ctx context.Context, inn string) (core.OrganizationBalance, error) {
	organization, err := s.GetOrganization(ctx, inn)
	if err != nil {
		return core.OrganizationBalance{}, err
	}
	return core.OrganizationBalance{
		INN:     organization.INN,
		Balance: organization.Balance,
	}, nil
}

// AuditBalances recomputes the signed log sum per organization and reports
// every row whose stored balance drifted from it.
func (s *LedgerStore) AuditBalances(ctx context.Context) ([]core.AuditFinding, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: ledger store is not configured")
	}
	var rows []struct {
		INN       string          `bun:"inn"`
		Balance   decimal.Decimal `bun:"balance"`
		LoggedSum decimal.Decimal `bun:"logged_sum"`
	}
	err := s.db.NewSelect().
		Model((*organizationRecord)(nil)).
		ColumnExpr("?TableAlias.inn AS inn").
		ColumnExpr("?TableAlias.balance AS balance").
		ColumnExpr(
			"COALESCE(SUM(CASE WHEN lbl.operation_type = ? THEN lbl.amount ELSE -lbl.amount END), 0) AS logged_sum",
			string(core.OperationDeposit),
		).
		Join("LEFT JOIN ledger_balance_log AS lbl ON lbl.organization_inn = ?TableAlias.inn").
		GroupExpr("?TableAlias.inn, ?TableAlias.balance").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	var findings []core.AuditFinding
	for _, row := range rows {
		if row.Balance.Equal(row.LoggedSum) {
			continue
		}
		findings = append(findings, core.AuditFinding{
			INN:        row.INN,
			Balance:    row.Balance,
			LoggedSum:  row.LoggedSum,
			Difference: row.Balance.Sub(row.LoggedSum),
		})
	}
	return findings, nil
}

func (s *LedgerStore) findPayment(ctx context.Context, operationID string) (*paymentRecord, error) {
	record := &paymentRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.operation_id = ?", operationID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *LedgerStore) duplicateResult(ctx context.Context, payment *paymentRecord) (core.DepositResult, error) {
	organization, err := s.GetOrganization(ctx, payment.PayerINN)
	if err != nil {
		return core.DepositResult{}, err
	}
	return core.DepositResult{
		Organization: organization,
		Payment:      paymentToDomain(payment),
		Duplicate:    true,
	}, nil
}

func organizationToDomain(record *organizationRecord) core.Organization {
	if record == nil {
		return core.Organization{}
	}
	return core.Organization{
		INN:       record.INN,
		Balance:   record.Balance,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func paymentToDomain(record *paymentRecord) core.Payment {
	if record == nil {
		return core.Payment{}
	}
	return core.Payment{
		ID:             record.ID,
		OperationID:    record.OperationID,
		Amount:         record.Amount,
		PayerINN:       record.PayerINN,
		DocumentNumber: record.DocumentNumber,
		DocumentDate:   record.DocumentDate,
		CreatedAt:      record.CreatedAt,
	}
}

func balanceLogToDomain(record *balanceLogRecord) core.BalanceLogEntry {
	if record == nil {
		return core.BalanceLogEntry{}
	}
	entry := core.BalanceLogEntry{
		ID:              record.ID,
		OrganizationINN: record.OrganizationINN,
		Amount:          record.Amount,
		OperationType:   core.OperationType(record.OperationType),
		Metadata:        record.Metadata,
		CreatedAt:       record.CreatedAt,
	}
	if record.PaymentID != nil {
		value := *record.PaymentID
		entry.PaymentID = &value
	}
	return entry
}

func ensureMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return metadata
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
