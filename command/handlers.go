package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-bank-ledger/core"
	"github.com/goliatone/go-bank-ledger/webhooks"
)

// PaymentProcessor handles one inbound notification end to end; the
// webhooks.Processor satisfies it.
type PaymentProcessor interface {
	Process(ctx context.Context, notification webhooks.Notification) (core.Ack, error)
}

type ProcessPaymentCommand struct {
	processor PaymentProcessor
}

func NewProcessPaymentCommand(processor PaymentProcessor) *ProcessPaymentCommand {
	return &ProcessPaymentCommand{processor: processor}
}

func (c *ProcessPaymentCommand) Execute(ctx context.Context, msg ProcessPaymentMessage) error {
	if c == nil || c.processor == nil {
		return commandDependencyError("command: payment processor is required")
	}
	ack, err := c.processor.Process(ctx, msg.Notification)
	if err != nil {
		return err
	}
	storeResult(ctx, ack)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
