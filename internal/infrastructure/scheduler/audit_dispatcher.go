// Package scheduler runs created audits in the background.
package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/domain/audit"
	"github.com/sitepulse/backend/internal/infrastructure/config"
)

// AuditRunner executes one audit end to end. An empty apiKey lets the
// runner fall back to stored credentials.
type AuditRunner interface {
	Run(ctx context.Context, auditID uuid.UUID, apiKey string) (*audit.Audit, error)
}

// AuditDispatcher is a bounded worker pool behind audit creation. Dispatch
// never blocks the caller: when the queue is full the audit is left pending
// and picked up on the next explicit run.
type AuditDispatcher struct {
	cfg    config.SchedulerConfig
	runner AuditRunner
	logger *zap.Logger

	queue     chan uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAuditDispatcher creates a dispatcher; call Start before dispatching
func NewAuditDispatcher(cfg config.SchedulerConfig, runner AuditRunner, logger *zap.Logger) *AuditDispatcher {
	return &AuditDispatcher{
		cfg:    cfg,
		runner: runner,
		logger: logger.Named("dispatcher"),
		queue:  make(chan uuid.UUID, cfg.QueueSize),
	}
}

// Start launches the worker pool
func (d *AuditDispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.cfg.MaxConcurrentJobs; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}

	d.logger.Info("Audit dispatcher started",
		zap.Int("workers", d.cfg.MaxConcurrentJobs),
		zap.Int("queue_size", d.cfg.QueueSize),
		zap.Duration("job_timeout", d.cfg.JobTimeout))
	return nil
}

// Stop drains the pool, waiting up to the context deadline
func (d *AuditDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	// Closing under the mutex serializes against Dispatch's send
	close(d.queue)
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Audit dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Audit dispatcher stop timed out")
		return ctx.Err()
	}
}

// Dispatch hands an audit to the pool without blocking. A full queue or a
// stopped pool only logs: the audit stays pending and remains runnable.
func (d *AuditDispatcher) Dispatch(auditID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		d.logger.Warn("Dispatch skipped, dispatcher not running",
			zap.String("audit_id", auditID.String()))
		return
	}

	// The send stays under the mutex so Stop cannot close the queue
	// between the running check and the send.
	select {
	case d.queue <- auditID:
		d.logger.Debug("Audit queued", zap.String("audit_id", auditID.String()))
	default:
		d.logger.Warn("Audit queue full, audit left pending",
			zap.String("audit_id", auditID.String()))
	}
}

func (d *AuditDispatcher) worker(ctx context.Context, workerID int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case auditID, ok := <-d.queue:
			if !ok {
				return
			}
			d.process(ctx, auditID, workerID)
		}
	}
}

func (d *AuditDispatcher) process(ctx context.Context, auditID uuid.UUID, workerID int) {
	jobCtx, cancel := context.WithTimeout(ctx, d.cfg.JobTimeout)
	defer cancel()

	d.logger.Info("Running audit",
		zap.Int("worker_id", workerID),
		zap.String("audit_id", auditID.String()))

	// The runner already persists failure state on the audit; the error
	// here is for the log only.
	if _, err := d.runner.Run(jobCtx, auditID, ""); err != nil {
		d.logger.Error("Audit run failed",
			zap.Int("worker_id", workerID),
			zap.String("audit_id", auditID.String()),
			zap.Error(err))
		return
	}

	d.logger.Info("Audit run finished",
		zap.Int("worker_id", workerID),
		zap.String("audit_id", auditID.String()))
}
