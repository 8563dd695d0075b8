// Package jobs runs background ledger maintenance through go-job queues.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"

	"github.com/goliatone/go-bank-ledger/core"
)

// JobIDLedgerAudit identifies the periodic balance reconciliation job.
const JobIDLedgerAudit = "ledger.audit"

// RetryPolicy bounds requeue behavior so audit failures cannot loop forever.
type RetryPolicy struct {
	MaxAttempts     int
	RetryDelay      time.Duration
	DeadLetterOnMax bool
}

// Normalize produces nack options for the given attempt count.
func (p RetryPolicy) Normalize(attempt int, reason string) queue.NackOptions {
	opts := queue.NackOptions{
		Delay:   p.RetryDelay,
		Requeue: true,
		Reason:  strings.TrimSpace(reason),
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		opts.Requeue = false
		opts.DeadLetter = p.DeadLetterOnMax
	}
	return opts
}

// NewAuditMessage builds the execution message for one audit run. The
// idempotency key dedupes concurrent schedulers enqueueing the same window.
func NewAuditMessage(window time.Time) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDLedgerAudit,
		IdempotencyKey: fmt.Sprintf("%s:%s", JobIDLedgerAudit, window.UTC().Format(time.RFC3339)),
		Parameters:     map[string]any{"window": window.UTC().Format(time.RFC3339)},
	}
}

// EnqueueAudit schedules an audit run on the queue.
func EnqueueAudit(ctx context.Context, enqueuer queue.Enqueuer, window time.Time) error {
	if enqueuer == nil {
		return fmt.Errorf("jobs: enqueuer is not configured")
	}
	return enqueuer.Enqueue(ctx, NewAuditMessage(window))
}

// Logger is the slice of the go-job logger contract the runner needs.
// Both job.GoLogger bridges and glog loggers satisfy it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// AuditRunner consumes audit jobs and reconciles stored balances against
// the balance log.
type AuditRunner struct {
	dequeuer queue.Dequeuer
	auditor  core.LedgerAuditor
	logger   Logger
	policy   RetryPolicy
	attempts map[string]int
}

func NewAuditRunner(dequeuer queue.Dequeuer, auditor core.LedgerAuditor, logger Logger, policy RetryPolicy) *AuditRunner {
	return &AuditRunner{
		dequeuer: dequeuer,
		auditor:  auditor,
		logger:   logger,
		policy:   policy,
		attempts: map[string]int{},
	}
}

// Run consumes deliveries until the context is canceled or the dequeuer
// reports a terminal error.
func (r *AuditRunner) Run(ctx context.Context) error {
	if r == nil || r.dequeuer == nil {
		return fmt.Errorf("jobs: dequeuer is not configured")
	}
	if r.auditor == nil {
		return fmt.Errorf("jobs: ledger auditor is not configured")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivery, err := r.dequeuer.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("jobs: dequeue failed: %w", err)
		}
		r.handle(ctx, delivery)
	}
}

// HandleOnce processes a single delivery. Exposed for embedding the runner
// into an existing worker loop.
func (r *AuditRunner) HandleOnce(ctx context.Context, delivery queue.Delivery) {
	r.handle(ctx, delivery)
}

func (r *AuditRunner) handle(ctx context.Context, delivery queue.Delivery) {
	if delivery == nil {
		return
	}
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDLedgerAudit {
		_ = delivery.Nack(ctx, queue.NackOptions{
			Requeue:    false,
			DeadLetter: true,
			Reason:     "unsupported job id",
		})
		return
	}

	key := strings.TrimSpace(msg.IdempotencyKey)
	findings, err := r.auditor.AuditBalances(ctx)
	if err != nil {
		attempt := r.attempts[key] + 1
		r.attempts[key] = attempt
		r.logError("ledger audit failed", "attempt", attempt, "error", err.Error())
		_ = delivery.Nack(ctx, r.policy.Normalize(attempt, err.Error()))
		return
	}
	delete(r.attempts, key)

	if len(findings) == 0 {
		r.logInfo("ledger audit clean")
	}
	for _, finding := range findings {
		r.logError("ledger audit drift detected",
			"inn", finding.INN,
			"balance", finding.Balance.StringFixed(core.AmountScale),
			"logged_sum", finding.LoggedSum.StringFixed(core.AmountScale),
		)
	}
	_ = delivery.Ack(ctx)
}

func (r *AuditRunner) logInfo(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Info(msg, args...)
}

func (r *AuditRunner) logError(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Error(msg, args...)
}
