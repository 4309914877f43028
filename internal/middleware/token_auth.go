package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tradekit/lumen/pkg/nostd"
	"go.uber.org/zap"
)

// TokenAuthConfig configures the access-token middleware guarding the
// control endpoints (bot start/stop, ledger mutations).
type TokenAuthConfig struct {
	// Bcrypt hash of the shared access token. Empty disables the check,
	// leaving the API open for demo deployments.
	AccessTokenHash string
	Logger          *zap.Logger
}

// TokenAuth compares the caller-supplied token against the configured bcrypt
// hash.
func TokenAuth(config TokenAuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.AccessTokenHash == "" {
				return next(c)
			}

			token := nostd.GetToken(c)
			if token == "" {
				config.Logger.Warn("access token missing",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "unauthorized: missing token",
				})
			}

			if err := nostd.BcryptMatch([]byte(config.AccessTokenHash), []byte(token)); err != nil {
				config.Logger.Warn("invalid access token",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "unauthorized: invalid token",
				})
			}

			return next(c)
		}
	}
}
