package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var admitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter shares counters between replicas through Redis. When Redis
// is unreachable it degrades to the in-memory limiter instead of failing
// requests.
type RedisLimiter struct {
	client   redis.Scripter
	prefix   string
	timeout  time.Duration
	fallback *MemoryLimiter
	now      func() time.Time
	logger   *slog.Logger
}

func NewRedis(client redis.Scripter, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{
		client:   client,
		prefix:   "rl:",
		timeout:  2 * time.Second,
		fallback: NewMemory(),
		now:      time.Now,
		logger:   logger,
	}
}

func (l *RedisLimiter) Admit(ctx context.Context, key string, quota int, window time.Duration) (Decision, error) {
	quota, window = normalize(quota, window)
	idx, resetAt := bucketOf(l.now(), window)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, idx)
	count, err := admitScript.Run(ctx, l.client, []string{redisKey}, window.Milliseconds()).Int()
	if err != nil {
		l.logger.WarnContext(ctx, "redis rate limiter unavailable, using in-memory fallback",
			"error", err,
			"key", key)
		return l.fallback.Admit(ctx, key, quota, window)
	}

	return decide(count, quota, resetAt), nil
}
