package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"

	"IdeaScout/internal/ports"
)

func TestValkeyLockAcquireAndRelease(t *testing.T) {
	t.Parallel()

	client := mock.NewClient(gomock.NewController(t))
	var token string

	client.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		if len(cmd) != 6 || cmd[0] != "SET" || cmd[1] != "ideas:lock" || cmd[3] != "NX" || cmd[4] != "EX" || cmd[5] != "60" {
			return false
		}
		token = cmd[2]
		return true
	}, "SET ideas:lock <token> NX EX 60")).Return(mock.Result(mock.ValkeyString("OK")))

	client.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return len(cmd) == 5 && cmd[0] == "EVALSHA" && cmd[2] == "1" && cmd[3] == "ideas:lock" && token != "" && cmd[4] == token
	}, "EVALSHA <sha> 1 ideas:lock <token>")).Return(mock.Result(mock.ValkeyInt64(1)))

	l := NewValkeyLock(client, "ideas:lock", time.Minute)
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatalf("release error: %v", err)
	}
}

func TestValkeyLockHeldElsewhere(t *testing.T) {
	t.Parallel()

	client := mock.NewClient(gomock.NewController(t))
	client.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.Result(mock.ValkeyNil()))

	if _, err := NewValkeyLock(client, "", 0).Acquire(context.Background()); !errors.Is(err, ports.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
}

func TestValkeyLockSurfacesServerErrors(t *testing.T) {
	t.Parallel()

	client := mock.NewClient(gomock.NewController(t))
	client.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(errors.New("connection refused")))

	_, err := NewValkeyLock(client, "ideas:lock", time.Hour).Acquire(context.Background())
	if err == nil || errors.Is(err, ports.ErrLockHeld) {
		t.Fatalf("expected a wrapped server error, got %v", err)
	}
}
