package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// AttemptWindow counts attempts per key in fixed windows kept in redis.
type AttemptWindow struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

type WindowResult struct {
	Allowed    bool
	Attempts   int64
	RetryAfter time.Duration
}

func NewAttemptWindow(client *redis.Client, limit int, window time.Duration) *AttemptWindow {
	if client == nil {
		return nil
	}
	return &AttemptWindow{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Hit records one attempt for key and reports whether it fits the window.
func (w *AttemptWindow) Hit(ctx context.Context, key string) (WindowResult, error) {
	if w == nil || w.client == nil {
		return WindowResult{}, errors.New("attempt window not configured")
	}
	if key == "" {
		return WindowResult{}, errors.New("attempt window key is empty")
	}

	now := w.now()
	bucket := windowKey(key, now, w.window)

	var incr *redis.IntCmd
	_, err := w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, bucket)
		pipe.PExpire(ctx, bucket, w.window)
		return nil
	})
	if err != nil {
		return WindowResult{}, err
	}

	attempts := incr.Val()
	res := WindowResult{Allowed: attempts <= w.limit, Attempts: attempts}
	if !res.Allowed {
		res.RetryAfter = windowEnd(now, w.window).Sub(now)
	}
	return res, nil
}

func windowKey(key string, now time.Time, window time.Duration) string {
	if window <= 0 {
		window = time.Minute
	}
	return key + ":" + strconv.FormatInt(now.UnixMilli()/window.Milliseconds(), 10)
}

func windowEnd(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window).Add(window)
}
