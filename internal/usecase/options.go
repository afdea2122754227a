package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Sleeper pauses between external calls; it must return early when ctx ends.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customises a stage.
type Option func(*stageOptions)

type stageOptions struct {
	sleep  Sleeper
	now    func() time.Time
	logger *slog.Logger
}

// WithSleeper replaces the rate-limit sleep, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(o *stageOptions) {
		if s != nil {
			o.sleep = s
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *stageOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the stage logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *stageOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(component string, opts []Option) stageOptions {
	o := stageOptions{
		sleep:  sleepContext,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoSleep skips every delay.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
