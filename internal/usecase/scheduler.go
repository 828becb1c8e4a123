package usecase

import (
	"context"
	"log/slog"
	"time"

	"KijiScanner/internal/ports"
)

// Job is one full ingestion cycle.
type Job func(ctx context.Context) error

// Scheduler wires the interval driver with an ingestion job.
type Scheduler struct {
	driver ports.Scheduler
	job    Job
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, job: job, logger: logger}
}

// Start registers the job with the driver. Job errors are logged; the next
// tick runs regardless.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.job == nil {
		return nil
	}

	tick := func(trigger time.Time) {
		s.logger.Info("scheduled run", "trigger", trigger.Format(time.RFC3339))
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, tick)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
