package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNewCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	if _, err := NewCronScheduler("not a cron", nil, false); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCronSchedulerRunOnStartAndStop(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("0 2 * * *", time.UTC, true)
	if err != nil {
		t.Fatalf("NewCronScheduler: %v", err)
	}

	ran := make(chan time.Time, 1)
	if err := s.Start(context.Background(), func(at time.Time) { ran <- at }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run on start")
	}

	next := s.Next()
	if next.IsZero() || next.Hour() != 2 || next.Minute() != 0 {
		t.Fatalf("unexpected next trigger: %v", next)
	}

	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("second Start must fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !s.Next().IsZero() {
		t.Fatalf("stopped scheduler should have no next trigger")
	}
}
