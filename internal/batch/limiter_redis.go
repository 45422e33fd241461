package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set
// per caller key, giving a shared budget across horizontally scaled
// instances. Redis failures fail open: a broken limiter must not take
// the validation endpoint down with it.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per rolling window per key,
// tracked in the given Redis client.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	now := time.Now()
	zkey := "vr:rate:" + key
	cutoff := float64(now.Add(-l.window).UnixNano())

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zkey, "0", fmt.Sprintf("%f", cutoff))
	card := pipe.ZCard(ctx, zkey)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("rate limiter redis error, allowing request", slog.Any("error", err))
		return true
	}

	if card.Val() >= int64(l.limit) {
		return false
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	pipe = l.rdb.TxPipeline()
	pipe.ZAdd(ctx, zkey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, zkey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("rate limiter redis error, allowing request", slog.Any("error", err))
	}
	return true
}
