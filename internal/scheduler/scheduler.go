// Package scheduler runs the recurring digest batches.
// An explicit start/stop lifecycle keeps scheduling out of package-level
// state and lets the server shut the jobs down cleanly.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"suitec/internal/core"
	"suitec/pkg/config"
	"suitec/pkg/logger"
)

// Scheduler owns the cron entries for the daily and weekly digest batches
type Scheduler struct {
	cron   *cron.Cron
	daily  core.DailyDigestService
	weekly core.WeeklyDigestService
	cfg    config.DigestConfig
}

// New creates a digest scheduler
func New(daily core.DailyDigestService, weekly core.WeeklyDigestService, cfg config.DigestConfig) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		daily:  daily,
		weekly: weekly,
		cfg:    cfg,
	}
}

// Start registers both digest jobs and starts the cron loop. The jobs fire
// at the configured cutoff hours so the collection window lines up with the
// window the services compute.
func (s *Scheduler) Start() error {
	dailySpec := fmt.Sprintf("0 %d * * *", s.cfg.DailyHour)
	if _, err := s.cron.AddFunc(dailySpec, func() {
		logger.Info("daily digest batch starting")
		s.daily.Collect(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule daily digest: %w", err)
	}

	weeklySpec := fmt.Sprintf("0 %d * * %d", s.cfg.WeeklyHour, s.cfg.WeeklyWeekday)
	if _, err := s.cron.AddFunc(weeklySpec, func() {
		logger.Info("weekly digest batch starting")
		s.weekly.Collect(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule weekly digest: %w", err)
	}

	s.cron.Start()
	logger.Infof("digest scheduler started (daily %q, weekly %q)", dailySpec, weeklySpec)
	return nil
}

// Stop halts the cron loop and waits for any running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("digest scheduler stopped")
}
