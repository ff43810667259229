package scheduler

import (
	"context"
	"time"

	"github.com/mobidist/backend/internal/application/etl"
	"github.com/mobidist/backend/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the nightly fact sync on a cron schedule. A run still in
// progress when the next tick fires is skipped rather than stacked.
type Scheduler struct {
	cron   *cron.Cron
	etl    *etl.CommissionFactETLService
	cfg    config.SchedulerConfig
	window int
	logger *zap.Logger
}

// New creates a scheduler for the nightly ETL sync
func New(etlService *etl.CommissionFactETLService, cfg config.SchedulerConfig, syncWindowDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		etl:    etlService,
		cfg:    cfg,
		window: syncWindowDays,
		logger: logger,
	}
}

// Start registers the nightly job and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.NightlySchedule, s.runNightlySync); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("schedule", s.cfg.NightlySchedule),
		zap.Int("sync_window_days", s.window),
	)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runNightlySync() {
	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	s.logger.Info("Nightly fact sync started")

	summary, err := s.etl.SyncRecent(ctx, s.window, etl.RunOptions{})
	if err != nil {
		s.logger.Error("Nightly fact sync failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return
	}

	statusSummary, err := s.etl.SyncSettlementStatus(ctx, etl.RunOptions{})
	if err != nil {
		s.logger.Error("Nightly status sync failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Nightly fact sync completed",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("batch_id", summary.BatchID),
		zap.Int("processed", summary.Processed),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated+statusSummary.Updated),
		zap.Int("failed", summary.Failed+statusSummary.Failed),
	)
}
