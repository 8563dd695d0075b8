package transport

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-bank-ledger/core"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message  string                `json:"message"`
	TextCode string                `json:"text_code"`
	Category string                `json:"category,omitempty"`
	Fields   []goerrors.FieldError `json:"fields,omitempty"`
}

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.LedgerErrorBadInput
	case goerrors.CategoryNotFound:
		return core.LedgerErrorNotFound
	case goerrors.CategoryExternal, goerrors.CategoryRateLimit:
		return core.LedgerErrorTransientStore
	default:
		return core.LedgerErrorInternal
	}
}

func writeError(w http.ResponseWriter, err error) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		rich = goerrors.New("An unexpected error occurred", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.LedgerErrorInternal)
	}
	status := rich.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := errorEnvelope{
		Error: errorBody{
			Message:  rich.Message,
			TextCode: rich.TextCode,
			Category: string(rich.Category),
			Fields:   rich.AllValidationErrors(),
		},
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
