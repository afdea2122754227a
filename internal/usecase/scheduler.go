package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"IdeaScout/internal/ports"
)

// Runner is anything that executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver ports.Scheduler
	runner Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger.With("component", "scheduler")}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled run triggered", "at", trigger.Format(time.RFC3339))
		err := s.runner.Run(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrLockHeld):
			s.logger.Warn("skipping run, another run holds the lock")
		default:
			s.logger.Error("scheduled run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
