package validate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adhamqabban37/vidrepair/internal/metrics"
)

// OutcomeCache keeps recent validation outcomes keyed by video ID.
// Outcomes for a given reference are stable over short windows, so repeat
// batches hit the cache instead of the platform.
//
// Two tiers: L1 in-memory (lost on restart) and optional L2 Redis. L2 is
// disabled when no Redis URL is configured or the server is unreachable;
// the cache then runs memory-only.
type OutcomeCache struct {
	l1  sync.Map // id → *cacheEntry
	rdb *redis.Client
	ttl time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewOutcomeCache builds a cache with the given TTL. redisURL may be empty.
func NewOutcomeCache(redisURL string, ttl time.Duration) *OutcomeCache {
	c := &OutcomeCache{ttl: ttl}
	if ttl <= 0 {
		c.ttl = 2 * time.Minute
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}
	return c
}

func cacheKey(id string) string {
	return "vr:outcome:" + id
}

// Get tries L1, then L2. An L2 hit repopulates L1.
func (c *OutcomeCache) Get(ctx context.Context, id string) (Outcome, bool) {
	if c == nil || id == "" {
		return Outcome{}, false
	}

	if val, ok := c.l1.Load(id); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			var out Outcome
			if json.Unmarshal(entry.data, &out) == nil {
				metrics.IncrCacheHits()
				return out, true
			}
		}
		c.l1.Delete(id)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
		if err == nil {
			var out Outcome
			if json.Unmarshal(data, &out) == nil {
				metrics.IncrCacheHits()
				c.l1.Store(id, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
				return out, true
			}
		}
	}

	metrics.IncrCacheMisses()
	return Outcome{}, false
}

// Set stores an outcome in both tiers. Transient reasons are never cached:
// a failed lookup now says nothing about the next one.
func (c *OutcomeCache) Set(ctx context.Context, id string, out Outcome) {
	if c == nil || id == "" {
		return
	}
	if out.Reason == ReasonValidationFailed || out.Reason == ReasonError {
		return
	}

	data, err := json.Marshal(out)
	if err != nil {
		return
	}

	c.l1.Store(id, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}
