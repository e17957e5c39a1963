package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps counters in process memory. Each replica counts on
// its own, so N replicas admit up to N times the quota; use RedisLimiter
// when the API runs with more than one instance.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]bucket
	now       func() time.Time
	lastSweep time.Time
}

type bucket struct {
	index   int64
	count   int
	resetAt time.Time
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]bucket),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests to cross window boundaries.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Admit(_ context.Context, key string, quota int, window time.Duration) (Decision, error) {
	quota, window = normalize(quota, window)
	now := l.now()
	idx, resetAt := bucketOf(now, window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now, window)

	b, ok := l.buckets[key]
	if !ok || b.index != idx {
		b = bucket{index: idx, resetAt: resetAt}
	}

	// Denied requests do not move the counter past the quota.
	if b.count >= quota {
		l.buckets[key] = b
		d := decide(b.count, quota, b.resetAt)
		d.Allowed = false
		return d, nil
	}

	b.count++
	l.buckets[key] = b
	return decide(b.count, quota, b.resetAt), nil
}

// sweep drops expired buckets at most once per window.
func (l *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	for k, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// Len reports how many live buckets are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
