package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP. Idle limiters expire after ten minutes.
func RateLimiter(perSecond float64, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = 1
	}
	limiters := cache.New(10*time.Minute, 20*time.Minute)

	return func(ctx *gin.Context) {
		limiter := limiterFor(limiters, ctx.ClientIP(), perSecond, burst)
		if !limiter.Allow() {
			ctx.Header("Retry-After", "1")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, response{
				Success: false,
				Message: "Too many requests",
				Error:   "rate limit exceeded",
			})
			return
		}
		ctx.Next()
	}
}

// limiterFor returns the limiter stored for ip, creating it on first use.
// Add fails when a concurrent request stored one first, and that one wins.
func limiterFor(limiters *cache.Cache, ip string, perSecond float64, burst int) *rate.Limiter {
	if val, found := limiters.Get(ip); found {
		return val.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	if err := limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		if val, found := limiters.Get(ip); found {
			return val.(*rate.Limiter)
		}
	}
	return limiter
}

// RecoveryMiddleware turns a handler panic into a 500 response
func RecoveryMiddleware(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			log.Error().
				Interface("panic", err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("Panic recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, response{
				Success: false,
				Message: "Internal server error",
				Error:   "unexpected panic",
			})
		}
	}()
	c.Next()
}

// ZerologMiddleware logs one line per request
func ZerologMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		query := c.Request.URL.RawQuery

		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
