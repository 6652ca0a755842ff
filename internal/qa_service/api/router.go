package api

import (
	"time"

	"docqa/internal/config"
	"docqa/pkg/circuitbreaker"
	"docqa/pkg/ginmiddleware"
	"docqa/pkg/logger"
	"docqa/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with the configured middleware and the
// API routes.
func SetupRouter(h *Handler, mw config.MiddlewareConfig, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if mw.RateLimiter.Enabled {
		limiter := buildRateLimiter(mw.RateLimiter)
		if limiter != nil {
			router.Use(ginmiddleware.RateLimit(limiter))
			log.Info("Rate limiter enabled: " + mw.RateLimiter.Algorithm)
		} else {
			log.Warn("Unknown rate limiter algorithm, rate limiting disabled: " + mw.RateLimiter.Algorithm)
		}
	}

	if mw.CircuitBreaker.Enabled {
		timeout, err := time.ParseDuration(mw.CircuitBreaker.Timeout)
		if err != nil || timeout <= 0 {
			timeout = 30 * time.Second
		}
		breaker := circuitbreaker.New(mw.CircuitBreaker.FailureThreshold, mw.CircuitBreaker.SuccessThreshold, timeout)
		router.Use(ginmiddleware.CircuitBreak(breaker))
		log.Info("Circuit breaker enabled")
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/documents", h.UploadDocument)
		v1.POST("/payers", h.RegisterPayer)
		v1.POST("/questions", h.AskQuestion)
	}

	return router
}

func buildRateLimiter(cfg config.RateLimiterConfig) ratelimiter.RateLimiter {
	switch cfg.Algorithm {
	case "tokenBucket":
		return ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity)
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil || window <= 0 {
			window = time.Minute
		}
		return ratelimiter.NewFixedWindowCounter(cfg.FixedWindow.Limit, window)
	default:
		return nil
	}
}
