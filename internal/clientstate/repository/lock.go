package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	keyClientLock  = "orderdesk:client:lock:%s"
	defaultLockTTL = 30 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

// memoryLocker serializes writers inside one process.
type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemoryLocker() domain.Locker {
	return &memoryLocker{locks: make(map[string]chan struct{})}
}

func (l *memoryLocker) Lock(ctx context.Context, clientID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[clientID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[clientID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, domain.ErrLockTimeout
	}
}

// redisLocker serializes writers across replicas sharing one redis.
type redisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client) domain.Locker {
	return &redisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    defaultLockTTL,
	}
}

func (l *redisLocker) Lock(ctx context.Context, clientID string) (func(), error) {
	key := fmt.Sprintf(keyClientLock, clientID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = l.script.Run(context.Background(), l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, domain.ErrLockTimeout
		case <-time.After(lockRetryDelay):
		}
	}
}
