package workerapp

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/app/bootstrap"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/config"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/jobs/badges"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/jobs/reconcile"
)

const jobTimeout = 10 * time.Minute

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type App struct {
	cfg       config.Config
	logger    *zap.Logger
	container *bootstrap.Container
	scheduler *Scheduler
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	container, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init worker dependencies: %w", err)
	}

	scheduler := NewScheduler(logger)
	jobs := []struct {
		spec string
		job  Job
	}{
		{cfg.Jobs.BadgesSpec, badges.New(container.Gamification, logger)},
		{cfg.Jobs.ReconcileSpec, reconcile.New(container.Moderation, cfg.Jobs.ReconcileBatch, logger)},
	}
	for _, entry := range jobs {
		if err := scheduler.Add(entry.spec, entry.job); err != nil {
			container.Close()
			return nil, err
		}
	}

	return &App{cfg: cfg, logger: logger, container: container, scheduler: scheduler}, nil
}

// Run blocks until ctx is cancelled, then waits for running jobs to finish.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker started",
		zap.String("badges_spec", a.cfg.Jobs.BadgesSpec),
		zap.String("reconcile_spec", a.cfg.Jobs.ReconcileSpec),
	)
	a.scheduler.Start(ctx)

	<-ctx.Done()
	a.scheduler.Stop()
	a.container.Close()
	a.logger.Info("worker stopped")
	return nil
}

// Scheduler runs jobs on cron specs in UTC. A job still running when its next
// tick arrives skips that tick.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	base   context.Context
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter := cronLogger{log: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		base:   context.Background(),
	}
}

func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runOnce(job) }); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", job.Name(), spec, err)
	}
	return nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.base = ctx
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) runOnce(job Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.base), jobTimeout)
	defer cancel()

	started := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name()), zap.Duration("took", time.Since(started)), zap.Error(err))
		return
	}
	s.logger.Debug("job finished", zap.String("job", job.Name()), zap.Duration("took", time.Since(started)))
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
