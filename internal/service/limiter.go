package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether a user may place another bet now.
type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// WindowCounter is a shared fixed-window counter, such as the Redis store.
type WindowCounter interface {
	CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error)
}

// windowLimiter allows limit bets per minute per user through a shared counter.
type windowLimiter struct {
	counter WindowCounter
	limit   int
}

// NewWindowLimiter limits bets per user per minute using a shared counter.
func NewWindowLimiter(counter WindowCounter, perMinute int) RateLimiter {
	return &windowLimiter{counter: counter, limit: perMinute}
}

func (l *windowLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	return l.counter.CheckRateLimit(ctx, userID, "bet", l.limit, time.Minute)
}

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryLimiter keeps a token bucket per user in process memory.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*userBucket
	every   rate.Limit
	burst   int
}

// NewMemoryLimiter limits bets per user per minute with in-process token
// buckets. Idle buckets are dropped once ctx is done or after ten idle minutes.
func NewMemoryLimiter(ctx context.Context, perMinute int) RateLimiter {
	l := &memoryLimiter{
		buckets: make(map[int64]*userBucket),
		every:   rate.Inf,
		burst:   perMinute,
	}
	if perMinute > 0 {
		l.every = rate.Every(time.Minute / time.Duration(perMinute))
	}
	go l.cleanup(ctx)
	return l
}

func (l *memoryLimiter) Allow(_ context.Context, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[userID]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[userID] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow(), nil
}

func (l *memoryLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			for id, b := range l.buckets {
				if time.Since(b.lastSeen) > 10*time.Minute {
					delete(l.buckets, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
