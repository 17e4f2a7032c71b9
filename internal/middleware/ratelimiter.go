package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/notesapp/notes-api/internal/config"
)

// RateLimiter throttles attempts per key within a fixed window
type RateLimiter interface {
	// Allow records one attempt for key and reports whether it is within the limit.
	// On a backend error the attempt is allowed and the error returned.
	Allow(ctx context.Context, key string) (bool, error)

	// Window is the period after which a throttled key may retry
	Window() time.Duration

	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter creates a Redis-based rate limiter sharing counters across instances
func NewRateLimiter(client *redis.Client, cfg *config.Config, logger *slog.Logger) RateLimiter {
	return NewRateLimiterWithClock(client, cfg, logger, time.Now)
}

// NewRateLimiterWithClock creates a Redis-based rate limiter that reads the time from now
func NewRateLimiterWithClock(client *redis.Client, cfg *config.Config, logger *slog.Logger, now func() time.Time) RateLimiter {
	return &redisRateLimiter{
		client: client,
		limit:  cfg.AuthRateLimit,
		window: time.Duration(cfg.AuthRateWindow) * time.Second,
		now:    now,
		logger: logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:{key}:{window start unix}
func (r *redisRateLimiter) windowKey(key string) string {
	start := r.now().UTC().Truncate(r.window).Unix()
	return fmt.Sprintf("rate:%s:%d", key, start)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// If limit is 0 or negative, unlimited
	if r.limit <= 0 || r.window <= 0 {
		return true, nil
	}

	windowKey := r.windowKey(key)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment attempt count", "error", err, "key", key)
		// On error, allow the request but log it
		return true, err
	}

	return incr.Val() <= r.limit, nil
}

func (r *redisRateLimiter) Window() time.Duration {
	return r.window
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// LocalRateLimiter keeps a token bucket per key in process memory.
// Used when Redis is not available; limits are per instance.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	limit    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter creates an in-process rate limiter allowing
// AuthRateLimit attempts per AuthRateWindow, refilled continuously
func NewLocalRateLimiter(cfg *config.Config, logger *slog.Logger) *LocalRateLimiter {
	return NewLocalRateLimiterWithClock(cfg, logger, time.Now)
}

// NewLocalRateLimiterWithClock creates an in-process rate limiter that reads the time from now
func NewLocalRateLimiterWithClock(cfg *config.Config, logger *slog.Logger, now func() time.Time) *LocalRateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using in-process rate limiter - limits are not shared between instances")

	window := time.Duration(cfg.AuthRateWindow) * time.Second
	limit := rate.Inf
	if cfg.AuthRateLimit > 0 && window > 0 {
		limit = rate.Limit(float64(cfg.AuthRateLimit) / window.Seconds())
	}

	return &LocalRateLimiter{
		limiters: make(map[string]*localEntry),
		limit:    limit,
		burst:    int(cfg.AuthRateLimit),
		window:   window,
		now:      now,
		logger:   logger,
	}
}

func (r *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if r.limit == rate.Inf {
		return true, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Sweep drops keys not seen for a full window. Their buckets have refilled,
// so a later attempt starts from the same budget a fresh bucket has.
func (r *LocalRateLimiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	removed := 0
	for key, entry := range r.limiters {
		if !entry.lastSeen.After(cutoff) {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// Len reports how many keys are currently tracked
func (r *LocalRateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

// RunSweeper calls Sweep every interval until ctx is cancelled
func (r *LocalRateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Debug("🧹 [RateLimiter] Evicted idle keys", "removed", removed)
			}
		}
	}
}

func (r *LocalRateLimiter) Window() time.Duration {
	return r.window
}

func (r *LocalRateLimiter) Close() error {
	return nil
}

// LimitByClientIP rejects requests with 429 once the client IP exceeds the
// limiter's budget for the named scope
func LimitByClientIP(limiter RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("⚠️ [RateLimiter] Rate limit check failed, allowing request", "error", err, "key", key)
		}
		if !allowed {
			logger.Warn("⚠️ [RateLimiter] Rate limit exceeded", "key", key, "path", c.FullPath())
			c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
