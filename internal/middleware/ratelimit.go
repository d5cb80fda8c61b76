package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AIRateLimiter caps AI checker requests per client IP using Redis
// fixed windows: a short burst window plus a daily cap. A limiter outage
// fails open so the feature does not go down with Redis.
type AIRateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	logger *logrus.Logger
}

// NewAIRateLimiter creates a new rate limiter for the AI checker
func NewAIRateLimiter(client *redis.Client, cfg config.RateLimitConfig, logger *logrus.Logger) *AIRateLimiter {
	return &AIRateLimiter{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Limit is the gin middleware guarding the AI checker endpoint
func (l *AIRateLimiter) Limit() gin.HandlerFunc {
	window := time.Duration(l.cfg.AIWindowMinutes) * time.Minute

	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, retryAfter, err := l.allow(c.Request.Context(), ip, window)
		if err != nil {
			l.logger.WithError(err).Warn("rate limiter unavailable, allowing request")
		} else if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many assessment requests. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow increments both windows and reports whether the request fits
func (l *AIRateLimiter) allow(ctx context.Context, ip string, window time.Duration) (bool, time.Duration, error) {
	burstKey := fmt.Sprintf("ai:burst:%s", ip)
	dailyKey := fmt.Sprintf("ai:daily:%s:%s", ip, time.Now().UTC().Format("2006-01-02"))

	burst, err := l.countInWindow(ctx, burstKey, window)
	if err != nil {
		return true, 0, err
	}
	if burst > int64(l.cfg.AIWindowRequests) {
		ttl, _ := l.client.TTL(ctx, burstKey).Result()
		return false, ttl, nil
	}

	daily, err := l.countInWindow(ctx, dailyKey, 24*time.Hour)
	if err != nil {
		return true, 0, err
	}
	if daily > int64(l.cfg.AIDailyRequests) {
		ttl, _ := l.client.TTL(ctx, dailyKey).Result()
		return false, ttl, nil
	}

	return true, 0, nil
}

// countInWindow bumps a fixed-window counter, setting the expiry when the
// key is first created
func (l *AIRateLimiter) countInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// BodySizeLimit rejects request bodies above maxBytes with 413
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"message": "Request body too large",
			})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestTimeout caps request handling time. The handler sees the
// deadline through the request context.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"success": false,
				"message": "Request timed out",
			})
			c.Abort()
		}
	}
}
