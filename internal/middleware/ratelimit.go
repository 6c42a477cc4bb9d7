package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gap-platform/backend/pkg/ratelimit"
	"github.com/gap-platform/backend/pkg/response"
)

// RateLimit returns a middleware that applies the fixed-window limiter keyed
// by the caller's API key. Must run after APIKey. Only ingestion routes mount
// this; the feeding endpoint is deliberately unlimited.
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextAPIKey)
		if key == "" {
			response.Unauthorized(c, "missing credential")
			c.Abort()
			return
		}
		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Limiter backend trouble should not take down ingestion.
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			response.RateLimited(c, res.Limit, 0, res.ResetAt.Unix())
			c.Abort()
			return
		}
		response.SetRateLimitHeaders(c, res.Limit, res.Remaining, res.ResetAt.Unix())
		c.Next()
	}
}
