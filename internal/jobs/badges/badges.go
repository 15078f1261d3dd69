package badges

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
)

type Sweeper interface {
	RunSweep(ctx context.Context) (gamification.SweepResult, error)
}

type Job struct {
	sweeper Sweeper
	now     func() time.Time
	logger  *zap.Logger
}

func New(sweeper Sweeper, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{sweeper: sweeper, now: time.Now, logger: logger}
}

func (j *Job) Name() string {
	return "badge_sweep"
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}

	started := j.now()
	result, err := j.sweeper.RunSweep(ctx)
	if err != nil {
		return fmt.Errorf("badge sweep: %w", err)
	}

	j.logger.Info("badge sweep job completed",
		zap.Int("users", result.Users),
		zap.Int("awarded", result.Awarded),
		zap.Int("failed", result.Failed),
		zap.Duration("took", j.now().Sub(started)),
	)
	return nil
}
