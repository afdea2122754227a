package usecase

import (
	"context"
	"testing"
	"time"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsJobOnTrigger(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	runs := 0
	s := NewScheduler(driver, RunnerFunc(func(context.Context) error {
		runs++
		return nil
	}), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job was not registered")
	}

	driver.job(fixedClock())
	driver.job(fixedClock().Add(24 * time.Hour))
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop failed: %v", err)
	}
}
