package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client request limiter in front of the
// public API.
type RateLimitConfig struct {
	Rate  float64 // requests per second per client IP
	Burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit keeps one token bucket per client IP. Idle clients are evicted
// after a few minutes so the map does not grow without bound.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			mu.Lock()
			client, ok := clients[ip]
			if !ok {
				client = &clientLimiter{
					limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
				}
				clients[ip] = client
			}
			client.lastSeen = time.Now()
			mu.Unlock()

			if !client.limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
