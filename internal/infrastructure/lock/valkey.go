package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"IdeaScout/internal/ports"
)

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// ValkeyConfig addresses the shared lock server.
type ValkeyConfig struct {
	Address  string
	Password string
}

// ValkeyLock is a SET NX lock shared by every host running the pipeline.
type ValkeyLock struct {
	client  valkey.Client
	key     string
	ttl     time.Duration
	release *valkey.Lua
}

var _ ports.RunLock = (*ValkeyLock)(nil)

// NewValkeyClient connects to the lock server.
func NewValkeyClient(cfg ValkeyConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	return client, nil
}

// NewValkeyLock wraps a client; the key expires after ttl if the holder dies.
func NewValkeyLock(client valkey.Client, key string, ttl time.Duration) *ValkeyLock {
	if key == "" {
		key = "ideascout:pipeline:lock"
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &ValkeyLock{client: client, key: key, ttl: ttl, release: valkey.NewLuaScript(releaseScript)}
}

// Acquire sets the key only when absent.
func (l *ValkeyLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	seconds := int64(l.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	err := l.client.Do(ctx, l.client.B().Set().Key(l.key).Value(token).Nx().ExSeconds(seconds).Build()).Error()
	if valkey.IsValkeyNil(err) {
		return nil, ports.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", l.key, err)
	}

	return func(ctx context.Context) error {
		if err := l.release.Exec(ctx, l.client, []string{l.key}, []string{token}).Error(); err != nil {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
		return nil
	}, nil
}
