package batch

import (
	"sync"
	"time"
)

// RateLimiter bounds request frequency per caller key. Implementations
// must be safe for concurrent use.
type RateLimiter interface {
	Allow(key string) bool
}

// MemoryLimiter is a sliding-window limiter held in process memory.
// Limits are per-instance: when horizontally scaled, each replica
// enforces its own budget. Use RedisLimiter for a shared budget.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time // injectable for tests
}

// NewMemoryLimiter allows limit requests per rolling window per key.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a request for key and reports whether it fits the budget.
// Timestamps outside the window are pruned on every check, which keeps
// per-key state bounded by the limit.
func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	fresh := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.hits[key] = fresh
		return false
	}
	l.hits[key] = append(fresh, now)
	return true
}
