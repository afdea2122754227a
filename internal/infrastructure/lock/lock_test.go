package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"IdeaScout/internal/ports"
)

func TestFileLockExcludesSecondHolder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.lock")
	l := NewFileLock(path, time.Hour)

	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if _, err := l.Acquire(context.Background()); !errors.Is(err, ports.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	if err := release(context.Background()); err != nil {
		t.Fatalf("release error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("lock file should be gone")
	}

	again, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("re-acquire error: %v", err)
	}
	_ = again(context.Background())
}

func TestFileLockTakesOverStaleLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.lock")
	if err := os.WriteFile(path, []byte("old-token"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewFileLock(path, time.Minute)
	l.now = func() time.Time { return time.Now().Add(time.Hour) }

	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("stale lock should be replaced: %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatalf("release error: %v", err)
	}
}

func TestFileLockReleaseKeepsForeignLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.lock")
	l := NewFileLock(path, 0)
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if err := os.WriteFile(path, []byte("someone-else"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatalf("release error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("foreign lock must survive release: %v", err)
	}
}
