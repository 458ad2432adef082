package service

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter is an in-memory per-key rate limiter for login attempts,
// keyed by normalized email. It is safe for concurrent use. Stale limiters
// are automatically cleaned up.
type LoginLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter *rate.Limiter
	last    atomic.Int64 // unix nanoseconds of last use
}

// NewLoginLimiter creates a limiter that allows perMinute attempts per key,
// refilling continuously, with the given burst. It starts a background
// goroutine that periodically removes stale entries.
func NewLoginLimiter(perMinute float64, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(perMinute / 60.0),
		burst:    burst,
	}
	go l.cleanup()
	return l
}

// Allow reports whether the given key may attempt a login under the rate
// limit. Each call consumes one token.
func (l *LoginLimiter) Allow(key string) bool {
	e := l.getOrCreate(key)
	e.last.Store(time.Now().UnixNano())
	return e.limiter.Allow()
}

func (l *LoginLimiter) getOrCreate(key string) *limiterEntry {
	l.mu.RLock()
	e, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check after acquiring the write lock.
	if e, ok := l.limiters[key]; ok {
		return e
	}

	e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
	e.last.Store(time.Now().UnixNano())
	l.limiters[key] = e
	return e
}

// cleanup runs periodically and removes entries that haven't been used in 10 minutes.
func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute).UnixNano()
		l.mu.Lock()
		for key, e := range l.limiters {
			if e.last.Load() < cutoff {
				delete(l.limiters, key)
			}
		}
		l.mu.Unlock()
	}
}
