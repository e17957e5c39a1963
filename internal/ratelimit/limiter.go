package ratelimit

import (
	"context"
	"time"
)

// DefaultWindow is the fixed admission window used when none is configured.
const DefaultWindow = time.Minute

// Decision describes the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter admits or denies a request for key against quota requests per
// fixed window. Windows are aligned to floor(now / window).
type Limiter interface {
	Admit(ctx context.Context, key string, quota int, window time.Duration) (Decision, error)
}

func normalize(quota int, window time.Duration) (int, time.Duration) {
	if quota <= 0 {
		quota = 1
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return quota, window
}

// bucketOf returns the window index containing now and the instant it ends.
func bucketOf(now time.Time, window time.Duration) (int64, time.Time) {
	idx := now.UnixNano() / int64(window)
	return idx, time.Unix(0, (idx+1)*int64(window)).UTC()
}

func decide(count, quota int, resetAt time.Time) Decision {
	remaining := quota - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= quota,
		Count:     count,
		Limit:     quota,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
