package command

import (
	"strings"

	"github.com/goliatone/go-bank-ledger/webhooks"
)

const (
	TypeProcessPayment = "ledger.command.payment.process"
)

type ProcessPaymentMessage struct {
	Notification webhooks.Notification
}

func (ProcessPaymentMessage) Type() string { return TypeProcessPayment }

func (m ProcessPaymentMessage) Validate() error {
	if strings.TrimSpace(m.Notification.OperationID) == "" {
		return commandValidationError("operation_id", "operation id is required")
	}
	if strings.TrimSpace(m.Notification.PayerINN) == "" {
		return commandValidationError("payer_inn", "payer inn is required")
	}
	return nil
}
