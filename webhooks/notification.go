package webhooks

import (
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bank-ledger/core"
)

// Notification is the transport-free payload of a bank payment webhook.
// Amount and DocumentDate arrive as strings; Parse owns format checks.
type Notification struct {
	OperationID    string
	Amount         string
	PayerINN       string
	DocumentNumber string
	DocumentDate   string
}

// Parse validates the notification shape and returns the typed deposit
// input. Failures collect per-field errors; a failed payload will fail the
// same way on redelivery, so callers must not retry it.
func (n Notification) Parse() (core.DepositInput, error) {
	var fieldErrors []goerrors.FieldError

	operationID := strings.TrimSpace(n.OperationID)
	parsedID, err := uuid.Parse(operationID)
	if operationID == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "operation_id",
			Message: "operation id is required",
		})
	} else if err != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "operation_id",
			Message: "operation id must be a valid UUID",
			Value:   operationID,
		})
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(n.Amount))
	if strings.TrimSpace(n.Amount) == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "amount",
			Message: "amount is required",
		})
	} else if err != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "amount",
			Message: "amount must be a decimal number",
			Value:   n.Amount,
		})
	} else if amountErr := core.ValidateAmount(amount); amountErr != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "amount",
			Message: "amount must be greater than zero with at most two decimal places",
			Value:   n.Amount,
		})
	}

	payerINN := strings.TrimSpace(n.PayerINN)
	if err := core.ValidateINN(payerINN); err != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "payer_inn",
			Message: "payer inn must be a numeric string of 10 to 12 digits",
			Value:   payerINN,
		})
	}

	documentNumber := strings.TrimSpace(n.DocumentNumber)
	if documentNumber == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "document_number",
			Message: "document number is required",
		})
	} else if len(documentNumber) > core.MaxDocumentNumberLength {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "document_number",
			Message: "document number must not exceed 50 characters",
			Value:   documentNumber,
		})
	}

	documentDate, err := time.Parse(time.RFC3339, strings.TrimSpace(n.DocumentDate))
	if strings.TrimSpace(n.DocumentDate) == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "document_date",
			Message: "document date is required",
		})
	} else if err != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "document_date",
			Message: "document date must be an RFC 3339 timestamp",
			Value:   n.DocumentDate,
		})
	}

	if len(fieldErrors) > 0 {
		return core.DepositInput{}, goerrors.NewValidation("webhooks: invalid payment notification", fieldErrors...).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.LedgerErrorBadInput).
			WithSeverity(goerrors.SeverityError)
	}

	return core.DepositInput{
		OperationID:    parsedID.String(),
		PayerINN:       payerINN,
		Amount:         amount,
		DocumentNumber: documentNumber,
		DocumentDate:   documentDate.UTC(),
	}, nil
}
