package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateOperation   = errors.New("core: duplicate operation id")
	ErrOrganizationNotFound = errors.New("core: organization not found")
	ErrInvalidINN           = errors.New("core: invalid tax identifier")
	ErrInvalidAmount        = errors.New("core: invalid amount")
	ErrInvalidOperationType = errors.New("core: invalid operation type")
	ErrNegativeBalance      = errors.New("core: balance must not be negative")
)

const (
	innMinLength = 10
	innMaxLength = 12

	// MaxDocumentNumberLength bounds the bank document reference field.
	MaxDocumentNumberLength = 50

	// AmountScale is the fixed-point scale of all monetary values.
	AmountScale = 2
)

type OperationType string

const (
	OperationDeposit    OperationType = "deposit"
	OperationWithdrawal OperationType = "withdrawal"
	OperationCorrection OperationType = "correction"
)

func (t OperationType) Validate() error {
	switch t {
	case OperationDeposit, OperationWithdrawal, OperationCorrection:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidOperationType, string(t))
}

// Sign reports how entries of this type contribute to the running balance.
func (t OperationType) Sign() int {
	if t == OperationDeposit {
		return 1
	}
	return -1
}

// Organization holds the running balance for a single tax identifier.
// Rows are created lazily on first payment and never deleted by the core.
type Organization struct {
	INN       string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Organization) Validate() error {
	if err := ValidateINN(o.INN); err != nil {
		return err
	}
	if o.Balance.IsNegative() {
		return fmt.Errorf("%w: %s has balance %s", ErrNegativeBalance, o.INN, o.Balance.String())
	}
	return nil
}

// Payment is an immutable record of a processed bank notification. Exactly
// one row exists per operation id; the store's unique constraint enforces it.
type Payment struct {
	ID             string
	OperationID    string
	Amount         decimal.Decimal
	PayerINN       string
	DocumentNumber string
	DocumentDate   time.Time
	CreatedAt      time.Time
}

// BalanceLogEntry is an append-only audit record of a balance change. The
// payment reference is nullable so the log survives payment row removal.
type BalanceLogEntry struct {
	ID              string
	OrganizationINN string
	PaymentID       *string
	Amount          decimal.Decimal
	OperationType   OperationType
	Metadata        map[string]any
	CreatedAt       time.Time
}

// SignedAmount returns the entry amount with the sign implied by its type.
func (e BalanceLogEntry) SignedAmount() decimal.Decimal {
	if e.OperationType.Sign() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}

type OrganizationBalance struct {
	INN     string
	Balance decimal.Decimal
}

// AuditFinding reports an organization whose stored balance drifted from the
// signed sum of its log entries.
type AuditFinding struct {
	INN        string
	Balance    decimal.Decimal
	LoggedSum  decimal.Decimal
	Difference decimal.Decimal
}

// ValidateINN checks the tax identifier format: digits only, 10 to 12 long.
func ValidateINN(inn string) error {
	trimmed := strings.TrimSpace(inn)
	if len(trimmed) < innMinLength || len(trimmed) > innMaxLength {
		return fmt.Errorf("%w: %q must be %d to %d digits", ErrInvalidINN, inn, innMinLength, innMaxLength)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q must contain only digits", ErrInvalidINN, inn)
		}
	}
	return nil
}

// ValidateAmount checks that a monetary value is strictly positive with at
// most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount.String())
	}
	if amount.Exponent() < -AmountScale {
		return fmt.Errorf("%w: %s exceeds scale %d", ErrInvalidAmount, amount.String(), AmountScale)
	}
	return nil
}
