// Package scheduler drives recurring pipeline runs from a cron expression.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"IdeaScout/internal/ports"
)

// CronScheduler runs the job on a standard five-field cron expression.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates the expression; a nil location means UTC.
func NewCronScheduler(spec string, location *time.Location, runOnStart bool) (*CronScheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, runOnStart: runOnStart}, nil
}

// Start registers the job; overlapping triggers are skipped while a run is in progress.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return errors.New("cron scheduler already started")
	}

	sched := cron.New(
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	id, err := sched.AddFunc(c.spec, func() { job(time.Now().In(c.location)) })
	if err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}
	sched.Start()
	c.cron = sched

	if c.runOnStart {
		go sched.Entry(id).WrappedJob.Run()
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Next reports the next trigger time, or zero when not started.
func (c *CronScheduler) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron == nil {
		return time.Time{}
	}
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts new triggers and waits for a running job or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	sched := c.cron
	c.cron = nil
	c.mu.Unlock()
	if sched == nil {
		return nil
	}

	done := sched.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
