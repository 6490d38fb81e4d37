package mw

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"room-booking-backend/internal/metrics"
)

// ClientLimiter hands out one token bucket per client address. Buckets of
// clients that stay quiet for idleTTL are evicted.
type ClientLimiter struct {
	buckets *cache.Cache
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
}

// NewClientLimiter creates a limiter allowing limit requests per second
// with the given burst for every client.
func NewClientLimiter(limit rate.Limit, burst int, idleTTL time.Duration) *ClientLimiter {
	return &ClientLimiter{
		buckets: cache.New(idleTTL, idleTTL),
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
	}
}

// Bucket returns the token bucket of client, creating it on first use.
func (l *ClientLimiter) Bucket(client string) *rate.Limiter {
	if v, ok := l.buckets.Get(client); ok {
		l.buckets.Set(client, v, l.idleTTL)
		return v.(*rate.Limiter)
	}
	fresh := rate.NewLimiter(l.limit, l.burst)
	// Add fails when a concurrent request created the bucket first.
	if err := l.buckets.Add(client, fresh, l.idleTTL); err != nil {
		if v, ok := l.buckets.Get(client); ok {
			return v.(*rate.Limiter)
		}
	}
	return fresh
}

// Middleware rejects requests over the budget of their client with 429.
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := l.Bucket(c.ClientIP())
		if bucket.Allow() {
			c.Next()
			return
		}

		metrics.RateLimited.Inc()
		if l.limit > 0 {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			c.Header("Retry-After", strconv.Itoa(max(1, int(retry.Round(time.Second).Seconds()))))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	}
}

// RateLimiter is a middleware for per-client rate limiting.
func RateLimiter(limit rate.Limit, burst int) gin.HandlerFunc {
	return NewClientLimiter(limit, burst, 10*time.Minute).Middleware()
}
