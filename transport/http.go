package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-bank-ledger/core"
	"github.com/goliatone/go-bank-ledger/webhooks"
)

const defaultRequestBodyLimit int64 = 1 << 20 // 1 MiB

// PaymentProcessor handles an inbound bank notification.
type PaymentProcessor interface {
	Process(ctx context.Context, notification webhooks.Notification) (core.Ack, error)
}

// BalanceService serves consistent balance lookups.
type BalanceService interface {
	GetBalance(ctx context.Context, inn string) (core.OrganizationBalance, error)
}

// LedgerHandler mounts the ledger's REST surface on a plain net/http mux.
// Authentication and routing beyond these two endpoints belong to the host.
type LedgerHandler struct {
	Processor           PaymentProcessor
	Balances            BalanceService
	MaxRequestBodyBytes int64
}

func NewLedgerHandler(processor PaymentProcessor, balances BalanceService) *LedgerHandler {
	return &LedgerHandler{
		Processor:           processor,
		Balances:            balances,
		MaxRequestBodyBytes: defaultRequestBodyLimit,
	}
}

func (h *LedgerHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/bank/{$}", h.handleBankWebhook)
	mux.HandleFunc("GET /organizations/{inn}/balance/{$}", h.handleBalance)
	return mux
}

type webhookPayload struct {
	OperationID    string `json:"operation_id"`
	Amount         string `json:"amount"`
	PayerINN       string `json:"payer_inn"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
}

type balancePayload struct {
	INN     string          `json:"inn"`
	Balance json.RawMessage `json:"balance"`
}

func (h *LedgerHandler) handleBankWebhook(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Processor == nil {
		writeError(w, transportError(
			"transport: payment processor is not configured",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		))
		return
	}

	limit := h.MaxRequestBodyBytes
	if limit <= 0 {
		limit = defaultRequestBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		writeError(w, transportError(
			"transport: read webhook body failed",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		))
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, transportError(
			"transport: webhook body must be a JSON object",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		))
		return
	}

	_, err = h.Processor.Process(r.Context(), webhooks.Notification{
		OperationID:    payload.OperationID,
		Amount:         payload.Amount,
		PayerINN:       payload.PayerINN,
		DocumentNumber: payload.DocumentNumber,
		DocumentDate:   payload.DocumentDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The upstream notifier only needs the status; duplicates acknowledge
	// the same way as first deliveries.
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Balances == nil {
		writeError(w, transportError(
			"transport: balance service is not configured",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		))
		return
	}

	inn := strings.TrimSpace(r.PathValue("inn"))
	balance, err := h.Balances.GetBalance(r.Context(), inn)
	if err != nil {
		if errors.Is(err, core.ErrOrganizationNotFound) {
			writeError(w, transportError(
				"transport: organization not found",
				goerrors.CategoryNotFound,
				http.StatusNotFound,
				map[string]any{"inn": inn},
			))
			return
		}
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(balancePayload{
		INN:     balance.INN,
		Balance: json.RawMessage(balance.Balance.StringFixed(core.AmountScale)),
	})
}
