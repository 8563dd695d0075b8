package bankledger

import (
	"fmt"

	"github.com/goliatone/go-bank-ledger/command"
	"github.com/goliatone/go-bank-ledger/core"
	"github.com/goliatone/go-bank-ledger/query"
	"github.com/goliatone/go-bank-ledger/transport"
	"github.com/goliatone/go-bank-ledger/webhooks"
)

type Commands struct {
	ProcessPayment *command.ProcessPaymentCommand
}

type Queries struct {
	GetBalance   *query.GetBalanceQuery
	VerifyLedger *query.VerifyLedgerQuery
}

// Facade bundles the service, the notification processor, and the
// command/query handlers behind one constructor.
type Facade struct {
	service   *core.Service
	processor *webhooks.Processor
	commands  Commands
	queries   Queries
}

func NewFacade(cfg Config, opts ...Option) (*Facade, error) {
	service, err := core.NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewFacadeFromService(service)
}

func NewFacadeFromService(service *core.Service) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("bankledger: service is required")
	}

	processor := webhooks.NewProcessor(service)
	processor.Logger = service.Logger()

	facade := &Facade{
		service:   service,
		processor: processor,
	}
	facade.commands = Commands{
		ProcessPayment: command.NewProcessPaymentCommand(processor),
	}
	facade.queries = Queries{
		GetBalance:   query.NewGetBalanceQuery(service),
		VerifyLedger: query.NewVerifyLedgerQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *core.Service {
	if f == nil {
		return nil
	}
	return f.service
}

func (f *Facade) Processor() *webhooks.Processor {
	if f == nil {
		return nil
	}
	return f.processor
}

// HTTPHandler mounts the webhook and balance endpoints for the facade.
func (f *Facade) HTTPHandler() *transport.LedgerHandler {
	if f == nil {
		return nil
	}
	return transport.NewLedgerHandler(f.processor, f.service)
}
