package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/taskmind/taskmind/internal/types"
)

// userIDKey is the gin context key holding the authenticated user's ID.
const userIDKey = "taskmind_user_id"

// identity extracts the caller's identity from the X-User-ID header.
// Authentication proper is out of scope; the header is the trusted
// boundary stand-in, and everything behind it treats the value as
// authoritative.
func (s *Server) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing X-User-ID header",
			})
			return
		}

		userID, err := types.ParseID(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid X-User-ID header",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUser returns the identity set by the identity middleware.
func currentUser(c *gin.Context) types.ID {
	return c.MustGet(userIDKey).(types.ID)
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// rateLimit applies a per-client token bucket, keyed by the caller's user
// ID. Limiters for idle clients are kept; the map is bounded by the user
// population, which is fine at this scale.
func (s *Server) rateLimit() gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[types.ID]*rate.Limiter)
	)

	return func(c *gin.Context) {
		userID := currentUser(c)

		mu.Lock()
		limiter, ok := limiters[userID]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
			limiters[userID] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
