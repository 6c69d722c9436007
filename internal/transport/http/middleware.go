package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// SubmitLimitMiddleware rejects submissions beyond the limiter's budget with 429.
func SubmitLimitMiddleware(limiter *rateLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow() {
			logger.Warn().Str("remote", c.ClientIP()).Msg("submission rate limit exceeded")
			c.String(http.StatusTooManyRequests, "Too many submissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
