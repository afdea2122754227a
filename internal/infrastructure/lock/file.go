// Package lock keeps two pipeline runs from overlapping.
package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"IdeaScout/internal/ports"
)

// FileLock is a lock file created exclusively; locks older than ttl are treated as abandoned.
type FileLock struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

var _ ports.RunLock = (*FileLock)(nil)

// NewFileLock builds a lock at path.
func NewFileLock(path string, ttl time.Duration) *FileLock {
	return &FileLock{path: path, ttl: ttl, now: time.Now}
}

// Acquire creates the lock file or returns ports.ErrLockHeld.
func (l *FileLock) Acquire(_ context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) && l.expired() {
		if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", rmErr)
		}
		f, err = os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	}
	if errors.Is(err, fs.ErrExist) {
		return nil, ports.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	if _, err := f.WriteString(token); err != nil {
		_ = f.Close()
		_ = os.Remove(l.path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close lock file: %w", err)
	}

	return func(context.Context) error {
		raw, err := os.ReadFile(l.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read lock file: %w", err)
		}
		if strings.TrimSpace(string(raw)) != token {
			return nil
		}
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		return nil
	}, nil
}

func (l *FileLock) expired() bool {
	if l.ttl <= 0 {
		return false
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return l.now().Sub(info.ModTime()) > l.ttl
}
