package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimitCoversGuardedRoutes(t *testing.T) {
	e := echo.New()
	api := e.Group("/api")
	api.Use(RateLimit(RateLimitConfig{Rate: 1, Burst: 2}))

	// The guarded group is derived from api, so mutations share the limiter.
	guarded := api.Group("")
	guarded.Use(TokenAuth(TokenAuthConfig{Logger: zap.NewNop()}))
	guarded.POST("/blockchain/deposit", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	deposit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/blockchain/deposit", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, deposit())
	assert.Equal(t, http.StatusOK, deposit())
	assert.Equal(t, http.StatusTooManyRequests, deposit())
}

func TestRateLimitIsPerClient(t *testing.T) {
	e := echo.New()
	g := e.Group("/api")
	g.Use(RateLimit(RateLimitConfig{Rate: 1, Burst: 1}))
	g.GET("/coins", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	status := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/coins", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, status("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1"))
	assert.Equal(t, http.StatusOK, status("10.0.0.2"))
}
