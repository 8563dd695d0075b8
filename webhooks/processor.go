package webhooks

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-bank-ledger/core"
)

// DepositService applies a validated deposit exactly once. core.Service
// satisfies it; tests substitute in-memory fakes.
type DepositService interface {
	ProcessDeposit(ctx context.Context, in core.DepositInput) (core.Ack, error)
}

// Processor is the webhook ingestion entry point: it validates the inbound
// notification shape and hands the typed deposit to the service. Duplicate
// deliveries resolve to the same success acknowledgment as the first one.
type Processor struct {
	Service DepositService
	Logger  core.Logger
	Now     func() time.Time
}

func NewProcessor(service DepositService) *Processor {
	return &Processor{
		Service: service,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (p *Processor) Process(ctx context.Context, notification Notification) (core.Ack, error) {
	if p == nil || p.Service == nil {
		return core.Ack{}, fmt.Errorf("webhooks: processor requires a deposit service")
	}

	input, err := notification.Parse()
	if err != nil {
		p.log(ctx, "notification rejected", map[string]any{
			"operation_id": strings.TrimSpace(notification.OperationID),
			"error":        err.Error(),
		})
		return core.Ack{}, err
	}

	ack, err := p.Service.ProcessDeposit(ctx, input)
	if err != nil {
		return core.Ack{}, err
	}

	if ack.Duplicate {
		p.log(ctx, "duplicate notification acknowledged", map[string]any{
			"operation_id": ack.OperationID,
			"payer_inn":    ack.PayerINN,
		})
		return ack, nil
	}

	p.log(ctx, "payment processed", map[string]any{
		"operation_id": ack.OperationID,
		"payer_inn":    ack.PayerINN,
		"balance":      ack.Balance.StringFixed(core.AmountScale),
	})
	return ack, nil
}

func (p *Processor) log(ctx context.Context, message string, fields map[string]any) {
	if p == nil || p.Logger == nil {
		return
	}
	logger := p.Logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(glog.FieldsLogger); ok {
		logger = fieldsLogger.WithFields(fields)
	}
	logger.Info(message)
}
