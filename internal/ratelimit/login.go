package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyLoginEmail  = "orderdesk:login:email:%s"
	keyLoginClient = "orderdesk:login:client:%s"

	loginAttempts = 5
	loginWindow   = time.Minute
)

// LoginLimiter throttles credential exchanges per email and per client.
// A nil limiter allows everything.
type LoginLimiter struct {
	window *AttemptWindow
	log    *zap.Logger
}

func NewLoginLimiter(client *redis.Client, log *zap.Logger) *LoginLimiter {
	if client == nil {
		return nil
	}
	return &LoginLimiter{
		window: NewAttemptWindow(client, loginAttempts, loginWindow),
		log:    log.Named("ratelimit.login"),
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.window != nil
}

// Allow reports whether another login attempt may be made. Limiter
// failures fail open so an unavailable redis never locks users out.
func (l *LoginLimiter) Allow(ctx context.Context, clientID, email string) bool {
	if !l.Enabled() {
		return true
	}
	keys := []string{
		fmt.Sprintf(keyLoginEmail, strings.ToLower(strings.TrimSpace(email))),
		fmt.Sprintf(keyLoginClient, strings.TrimSpace(clientID)),
	}
	for _, key := range keys {
		res, err := l.window.Hit(ctx, key)
		if err != nil {
			l.log.Warn("login limiter unavailable", zap.Error(err))
			return true
		}
		if !res.Allowed {
			l.log.Info("login throttled", zap.Int64("attempts", res.Attempts), zap.Duration("retry_after", res.RetryAfter))
			return false
		}
	}
	return true
}
