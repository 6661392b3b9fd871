package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/metrics"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

// MiddlewareConfig configures the global middleware chain.
type MiddlewareConfig struct {
	CORSOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter RateLimiter
	Metrics *metrics.HTTPMetrics
}

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger, cfg MiddlewareConfig) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.CORSOrigins))
	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(SecurityMiddleware())
	if cfg.Limiter != nil {
		router.Use(RateLimitMiddleware(cfg.Limiter, logger))
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid2.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware allows the configured browser origins. "*" allows any origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		// Credentials cannot be combined with a literal "*".
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware enforces per-IP limits. Limiter failures let the request through.
func RateLimitMiddleware(limiter RateLimiter, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}

		ok, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			utils.FromContext(c.Request.Context(), logger).Warn("Rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

// TokenBucket is an in-process limiter with capacity tokens refilled at perMinute.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true, nil
	}

	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// RedisRateLimiter counts requests per key in fixed one-minute windows shared
// by every replica.
type RedisRateLimiter struct {
	client    *redis.Client
	perMinute int64
	prefix    string
	now       func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, perMinute int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		perMinute: int64(perMinute),
		prefix:    "ratelimit:",
		now:       time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().Unix() / 60
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, ":", "_"), window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter failed: %w", err)
	}
	return incr.Val() <= l.perMinute, nil
}
