package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
)

type Reconciler interface {
	Reconcile(ctx context.Context, batchSize int) (moderation.ReconcileResult, error)
}

// Job re-queues pending content whose queue entry is missing.
type Job struct {
	reconciler Reconciler
	batchSize  int
	now        func() time.Time
	logger     *zap.Logger
}

func New(reconciler Reconciler, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		reconciler: reconciler,
		batchSize:  batchSize,
		now:        time.Now,
		logger:     logger,
	}
}

func (j *Job) Name() string {
	return "moderation_reconcile"
}

func (j *Job) Run(ctx context.Context) error {
	if j.reconciler == nil {
		return nil
	}

	started := j.now()
	result, err := j.reconciler.Reconcile(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("reconcile moderation queue: %w", err)
	}

	if result.Requeued > 0 || result.Failed > 0 {
		j.logger.Info("moderation reconcile completed",
			zap.Int("scanned", result.Scanned),
			zap.Int("requeued", result.Requeued),
			zap.Int("failed", result.Failed),
			zap.Duration("took", j.now().Sub(started)),
		)
	}
	return nil
}
