package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an unused per-user limiter is kept.
const idleAfter = time.Hour

// RateLimiter hands out one token bucket per user.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows perMinute events per user with the given burst.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether user may act now and consumes a token if so.
func (rl *RateLimiter) Allow(user string) bool {
	if rl == nil || rl.rate == rate.Inf {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) > idleAfter {
		rl.sweep(now)
	}
	entry, ok := rl.limiters[user]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[user] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than idleAfter. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	threshold := now.Add(-idleAfter)
	for user, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, user)
		}
	}
	rl.lastSweep = now
}
