package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
}

// RateLimiter provides Redis-backed rate limiting: a general per-IP
// limiter plus a keyed variant used to throttle anonymous reports
// per IP per gig.
type RateLimiter struct {
	redis  *redis.Client
	ctx    context.Context
	config RateLimiterConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		ctx:    context.Background(),
		config: config,
	}
}

// Middleware returns a Gin middleware limiting each client IP to the
// configured request budget.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := rl.checkKey(
			fmt.Sprintf("ratelimit:%s", clientIP),
			rl.config.MaxRequests,
			rl.config.Window,
		)
		if err != nil {
			// Fail open: a redis hiccup must not take the API down
			c.Next()
			return
		}

		if !allowed {
			tooManyRequests(c, retryAfter)
			return
		}

		c.Next()
	}
}

// PerGigMiddleware limits a client IP to maxRequests calls per window
// for each distinct gig id (route param "id"). Used on the anonymous
// report endpoint so one source cannot flood a single gig's counter.
func (rl *RateLimiter) PerGigMiddleware(prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s:%s", prefix, c.ClientIP(), c.Param("id"))

		allowed, retryAfter, err := rl.checkKey(key, maxRequests, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			tooManyRequests(c, retryAfter)
			return
		}

		c.Next()
	}
}

// checkKey implements a fixed-window counter: INCR plus EXPIRE on the
// first hit, atomic per key on the redis side.
func (rl *RateLimiter) checkKey(key string, maxRequests int, window time.Duration) (bool, time.Duration, error) {
	count, err := rl.redis.Incr(rl.ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := rl.redis.Expire(rl.ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(maxRequests) {
		ttl, err := rl.redis.TTL(rl.ctx, key).Result()
		if err != nil {
			ttl = window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

func tooManyRequests(c *gin.Context, retryAfter time.Duration) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many requests, please try again later",
		"retry_after": int(retryAfter.Seconds()),
	})
	c.Abort()
}
