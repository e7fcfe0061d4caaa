package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
)

const (
	keyClientState  = "orderdesk:client:%s"
	defaultStateTTL = 30 * 24 * time.Hour
)

// redisStore keeps every client in one hash that expires after a month of inactivity.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) domain.Store {
	return &redisStore{client: client, ttl: defaultStateTTL}
}

func (s *redisStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, fmt.Sprintf(keyClientState, clientID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, clientID, key, value string) error {
	hashKey := fmt.Sprintf(keyClientState, clientID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	pipe.Expire(ctx, hashKey, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, fmt.Sprintf(keyClientState, clientID), keys...).Err()
}
