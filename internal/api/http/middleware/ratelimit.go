package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/placement-track/placement-track-backend/internal/auth"
)

// RateLimit throttles generator-backed routes per caller. Authenticated
// callers are keyed by uid, anonymous ones by client IP. Limiter state is
// in-memory; a multi-replica deployment rate limits per replica.
func RateLimit(perMinute int, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *gin.Context) {
		key := c.ClientIP()
		if ident, ok := auth.IdentityFrom(c); ok {
			key = ident.UID
		}

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(limit, burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
