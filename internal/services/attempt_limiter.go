package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AttemptLimiter throttles code submissions per user: each accepted code
// starts a browser run for every active invite.
type AttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	r        rate.Limit
	burst    int
}

// NewAttemptLimiter allows perHour attempts per user with the given burst.
// perHour <= 0 disables throttling.
func NewAttemptLimiter(perHour, burst int) *AttemptLimiter {
	if perHour <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &AttemptLimiter{
		limiters: make(map[string]*userLimiter),
		r:        rate.Every(time.Hour / time.Duration(perHour)),
		burst:    burst,
	}
}

func (l *AttemptLimiter) Allow(userID string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.pruneLocked(now)
	v, ok := l.limiters[userID]
	if !ok {
		v = &userLimiter{limiter: rate.NewLimiter(l.r, l.burst)}
		l.limiters[userID] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// pruneLocked drops users idle for more than two hours.
func (l *AttemptLimiter) pruneLocked(now time.Time) {
	for id, v := range l.limiters {
		if now.Sub(v.lastSeen) > 2*time.Hour {
			delete(l.limiters, id)
		}
	}
}
