package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	LedgerErrorBadInput           = "LEDGER_BAD_INPUT"
	LedgerErrorNotFound           = "LEDGER_NOT_FOUND"
	LedgerErrorDuplicateOperation = "LEDGER_DUPLICATE_OPERATION"
	LedgerErrorTransientStore     = "LEDGER_TRANSIENT_STORE"
	LedgerErrorInternal           = "LEDGER_INTERNAL_ERROR"
)

func ledgerErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureLedgerErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrDuplicateOperation):
		return newLedgerError(err.Error(), goerrors.CategoryConflict, LedgerErrorDuplicateOperation)
	case errors.Is(err, ErrOrganizationNotFound):
		return newLedgerError(err.Error(), goerrors.CategoryNotFound, LedgerErrorNotFound)
	case errors.Is(err, ErrInvalidINN),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidOperationType):
		return newLedgerError(err.Error(), goerrors.CategoryValidation, LedgerErrorBadInput)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "lock timeout"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return newLedgerError(err.Error(), goerrors.CategoryExternal, LedgerErrorTransientStore)
	case strings.Contains(msg, "not found"):
		return newLedgerError(err.Error(), goerrors.CategoryNotFound, LedgerErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must"):
		return newLedgerError(err.Error(), goerrors.CategoryBadInput, LedgerErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureLedgerErrorEnvelope(mapped)
}

func newLedgerError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureLedgerErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureLedgerErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = ledgerHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultLedgerTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultLedgerTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return LedgerErrorBadInput
	case goerrors.CategoryNotFound:
		return LedgerErrorNotFound
	case goerrors.CategoryConflict:
		return LedgerErrorDuplicateOperation
	case goerrors.CategoryExternal, goerrors.CategoryRateLimit:
		return LedgerErrorTransientStore
	default:
		return LedgerErrorInternal
	}
}

func ledgerHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal, goerrors.CategoryRateLimit:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsTransient reports whether an error should be retried by the processor.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	mapped := ledgerErrorMapper(err)
	return mapped != nil && mapped.Category == goerrors.CategoryExternal
}
