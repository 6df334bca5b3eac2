package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/SeakMengs/SignFlow/internal/config"
	"go.uber.org/zap"
)

// WindowCounter counts hits of a key inside one fixed window.
type WindowCounter interface {
	Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error)
}

type FixedWindowRateLimiter struct {
	limit   int
	window  time.Duration
	enabled bool
	counter WindowCounter
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewRateLimiter uses counter when given (Redis, shared by replicas) and a
// process local counter otherwise.
func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger, counter WindowCounter) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if counter == nil {
		counter = NewMemoryWindowCounter()
	}

	return &FixedWindowRateLimiter{
		limit:   cfg.RequestsPerTimeFrame,
		window:  cfg.TimeFrame,
		enabled: cfg.Enabled && cfg.RequestsPerTimeFrame > 0 && cfg.TimeFrame > 0,
		counter: counter,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request, and if not, how long
// until the current window closes. Counter failures let the request through.
func (rl *FixedWindowRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if !rl.enabled {
		return true, 0
	}

	now := rl.now()
	windowStart := now.Truncate(rl.window)
	hits, err := rl.counter.Incr(ctx, key, windowStart, rl.window)
	if err != nil {
		rl.logger.Warnf("Rate limiter counter failed for %s, allowing request: %v", key, err)
		return true, 0
	}

	if hits > int64(rl.limit) {
		return false, windowStart.Add(rl.window).Sub(now)
	}
	return true, 0
}

type memoryWindow struct {
	start time.Time
	hits  int64
}

type MemoryWindowCounter struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
}

func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{windows: make(map[string]memoryWindow)}
}

func (c *MemoryWindowCounter) Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok || !w.start.Equal(windowStart) {
		if len(c.windows) > 10_000 {
			c.evictBefore(windowStart)
		}
		w = memoryWindow{start: windowStart}
	}
	w.hits++
	c.windows[key] = w
	return w.hits, nil
}

// evictBefore drops windows that already closed. Callers hold the lock.
func (c *MemoryWindowCounter) evictBefore(start time.Time) {
	for key, w := range c.windows {
		if w.start.Before(start) {
			delete(c.windows, key)
		}
	}
}
