package core

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service owns the ledger semantics: transactional deposits with bounded
// retry of transient store failures, consistent balance reads, and the
// balance/log audit. Stores, logging, and metrics are injected.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	ledgerStore     LedgerStore
	balanceReader   BalanceReader
	ledgerAuditor   LedgerAuditor

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("bank-ledger", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("bank-ledger"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.ledgerStore == nil && builder.repositoryFactory != nil {
		if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			builder.ledgerStore = provider.LedgerStore()
			if builder.balanceReader == nil {
				builder.balanceReader = provider.BalanceReader()
			}
			if builder.ledgerAuditor == nil {
				builder.ledgerAuditor = provider.LedgerAuditor()
			}
		}
	}
	if builder.ledgerStore == nil {
		return nil, mapBuildError(builder.errorMapper,
			fmt.Errorf("core: ledger store is required"))
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		ledgerStore:     builder.ledgerStore,
		balanceReader:   builder.balanceReader,
		ledgerAuditor:   builder.ledgerAuditor,
		now: func() time.Time {
			return time.Now().UTC()
		},
		sleep: sleepContext,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Logger exposes the resolved logger so callers can share it with
// surrounding components.
func (s *Service) Logger() Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

// ProcessDeposit applies a validated deposit exactly once. Transient store
// failures are retried with exponential backoff up to the configured bound;
// a duplicate operation id resolves to a success ack with no state change.
func (s *Service) ProcessDeposit(ctx context.Context, in DepositInput) (Ack, error) {
	if s == nil || s.ledgerStore == nil {
		return Ack{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()

	var result DepositResult
	var err error
	backoff := s.config.Retry.InitialBackoff
	for attempt := 1; ; attempt++ {
		result, err = s.ledgerStore.ApplyDeposit(ctx, in)
		if err == nil || !IsTransient(err) || attempt >= s.config.Retry.MaxAttempts {
			break
		}
		s.logInfo(ctx, "deposit retry scheduled", map[string]any{
			"operation_id": in.OperationID,
			"payer_inn":    in.PayerINN,
			"attempt":      attempt,
			"error":        err.Error(),
		})
		if sleepErr := s.sleep(ctx, backoff); sleepErr != nil {
			err = sleepErr
			break
		}
		backoff = nextBackoff(backoff, s.config.Retry.MaxBackoff)
	}
	if err != nil {
		s.observeOperation(ctx, startedAt, "deposit", err, map[string]any{
			"operation_id": in.OperationID,
			"payer_inn":    in.PayerINN,
		})
		return Ack{}, s.mapError(err)
	}

	ack := Ack{
		OperationID: in.OperationID,
		PayerINN:    in.PayerINN,
		Balance:     result.Organization.Balance,
		Duplicate:   result.Duplicate,
		ProcessedAt: s.now(),
	}
	s.observeOperation(ctx, startedAt, "deposit", nil, map[string]any{
		"operation_id": in.OperationID,
		"payer_inn":    in.PayerINN,
		"balance":      result.Organization.Balance.StringFixed(AmountScale),
		"duplicate":    result.Duplicate,
	})
	return ack, nil
}

// GetBalance reads the latest committed balance for an organization.
func (s *Service) GetBalance(ctx context.Context, inn string) (OrganizationBalance, error) {
	if s == nil {
		return OrganizationBalance{}, fmt.Errorf("core: service is not configured")
	}
	if err := ValidateINN(inn); err != nil {
		return OrganizationBalance{}, s.mapError(err)
	}
	if s.balanceReader != nil {
		balance, err := s.balanceReader.GetBalance(ctx, inn)
		if err != nil {
			return OrganizationBalance{}, s.mapError(err)
		}
		return balance, nil
	}
	org, err := s.ledgerStore.GetOrganization(ctx, inn)
	if err != nil {
		return OrganizationBalance{}, s.mapError(err)
	}
	return OrganizationBalance{INN: org.INN, Balance: org.Balance}, nil
}

// VerifyLedger recomputes signed log sums and reports drifted organizations.
func (s *Service) VerifyLedger(ctx context.Context) ([]AuditFinding, error) {
	if s == nil || s.ledgerAuditor == nil {
		return nil, fmt.Errorf("core: ledger auditor is not configured")
	}
	startedAt := s.now()
	findings, err := s.ledgerAuditor.AuditBalances(ctx)
	s.observeOperation(ctx, startedAt, "audit", err, map[string]any{
		"findings": len(findings),
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return findings, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	mapper := s.errorMapper
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func nextBackoff(current, maximum time.Duration) time.Duration {
	if current <= 0 {
		current = 50 * time.Millisecond
	}
	next := current * 2
	if maximum > 0 && next > maximum {
		return maximum
	}
	return next
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryExternal, "core: retry wait canceled")
	case <-timer.C:
		return nil
	}
}
