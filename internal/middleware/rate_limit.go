package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per client IP in fixed windows stored in Redis.
// It fails open: with no client, or when Redis errors, requests pass.
type RateLimiter struct {
	redis   *redis.Client
	config  RateLimitConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// RateLimitStatus is the body of the rate limit status endpoint
type RateLimitStatus struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	Enabled   bool  `json:"enabled"`
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger, m *metrics.Metrics) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:   redisClient,
		config:  config,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// NewGenerateRateLimiter creates the limiter guarding recipe generation
func NewGenerateRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger *zap.Logger, m *metrics.Metrics) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_generation",
	}, logger, m)
}

// Enabled reports whether a Redis client backs the limiter
func (rl *RateLimiter) Enabled() bool {
	return rl.redis != nil
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), clientIP)
		if err != nil {
			rl.logger.Warn("rate limit check failed, allowing request",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.metrics.RateLimited()
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// StatusHandler reports the caller's remaining requests without consuming one
func (rl *RateLimiter) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.JSON(http.StatusOK, RateLimitStatus{Limit: rl.config.Limit, Remaining: rl.config.Limit})
			return
		}

		remaining, resetTime, err := rl.GetRemainingRequests(c.Request.Context(), c.ClientIP())
		if err != nil {
			rl.logger.Warn("rate limit status lookup failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rate limit status unavailable"})
			return
		}

		c.JSON(http.StatusOK, RateLimitStatus{
			Limit:     rl.config.Limit,
			Remaining: remaining,
			Reset:     resetTime.Unix(),
			Enabled:   true,
		})
	}
}

// IsAllowed counts a request from the client and reports whether it fits in
// the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, clientKey string) (bool, int, time.Time, error) {
	key, windowStart := rl.windowKey(clientKey)

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	allowed := count <= rl.config.Limit

	return allowed, remaining, resetTime, nil
}

// GetRemainingRequests returns the number of remaining requests for a client
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, clientKey string) (int, time.Time, error) {
	key, windowStart := rl.windowKey(clientKey)
	resetTime := windowStart.Add(rl.config.Window)

	count, err := rl.redis.Get(ctx, key).Int()
	if err == redis.Nil {
		// No requests yet in this window
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}

	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetTime, nil
}

func (rl *RateLimiter) windowKey(clientKey string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, clientKey, windowStart.Unix()), windowStart
}
