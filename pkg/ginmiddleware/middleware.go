package ginmiddleware

import (
	"fmt"
	"net/http"

	"docqa/pkg/circuitbreaker"
	"docqa/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// RateLimit is a gin middleware that applies rate limiting to all requests.
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// CircuitBreak is a gin middleware that applies the circuit breaker pattern.
// HTTP status codes >= 500 count as failures.
func CircuitBreak(breaker circuitbreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := breaker.Execute(func() error {
			c.Next()
			if status := c.Writer.Status(); status >= http.StatusInternalServerError {
				return fmt.Errorf("server error: status code %d", status)
			}
			return nil
		})

		if err == circuitbreaker.ErrCircuitOpen {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable: circuit breaker is open"})
		}
		// Other errors were already written to the response by the handler.
	}
}
