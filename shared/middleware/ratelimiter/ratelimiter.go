package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter is one identity's token bucket plus the timer that forgets it.
type limiter struct {
	bucket *rate.Limiter
	timer  *time.Timer
}

// UserRateLimiter keeps a token bucket per identity. Buckets unused for
// expirationTime are dropped.
type UserRateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*limiter
	limit          rate.Limit
	burst          int
	expirationTime time.Duration
	stopped        bool
}

// New creates a limiter allowing perSecond events per second with the given burst.
func New(perSecond float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*limiter),
		limit:          rate.Limit(perSecond),
		burst:          max(burst, 1),
		expirationTime: expirationTime,
	}
}

// PerMinute allows n events per minute per identity, all of them usable at once.
func PerMinute(n int, expirationTime time.Duration) *UserRateLimiter {
	n = max(n, 1)
	return &UserRateLimiter{
		limiters:       make(map[string]*limiter),
		limit:          rate.Every(time.Minute / time.Duration(n)),
		burst:          n,
		expirationTime: expirationTime,
	}
}

func (u *UserRateLimiter) getLimiter(id string) *limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	l, ok := u.limiters[id]
	if !ok {
		l = &limiter{bucket: rate.NewLimiter(u.limit, u.burst)}
		u.limiters[id] = l
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	if !u.stopped {
		l.timer = time.AfterFunc(u.expirationTime, func() { u.forget(id, l) })
	}
	return l
}

func (u *UserRateLimiter) forget(id string, l *limiter) {
	u.mu.Lock()
	if u.limiters[id] == l {
		delete(u.limiters, id)
	}
	u.mu.Unlock()
}

// Allow reports whether id may perform one more event now.
func (u *UserRateLimiter) Allow(id string) bool {
	return u.getLimiter(id).bucket.Allow()
}

// Len returns the number of tracked identities.
func (u *UserRateLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.limiters)
}

// Stop cancels every expiration timer.
func (u *UserRateLimiter) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopped = true
	for _, l := range u.limiters {
		if l.timer != nil {
			l.timer.Stop()
		}
	}
}
