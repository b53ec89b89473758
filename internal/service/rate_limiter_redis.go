package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// INCR + EXPIRE atomicos: ventana fija que nace con el primer intento.
const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	logger *zap.Logger
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter crea un rate limiter compartido entre instancias.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int, logger *zap.Logger) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = defaultRateWindow
	}
	if max <= 0 {
		max = defaultRateMax
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "auth:rl:",
		logger: logger,
	}
}

func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		// Ante fallas de Redis no se bloquea trafico legitimo.
		return true
	}
	if count > l.max {
		if l.logger != nil {
			l.logger.Warn("rate limit exceeded", zap.String("key", normalizedKey))
		}
		return false
	}
	return true
}
