package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

const healthPath = "/health"

// skipHealth exempts the liveness probe from auth and throttling.
func skipHealth(c echo.Context) bool {
	return c.Path() == healthPath
}

// bearerAuth rejects requests whose Authorization header does not carry key.
func bearerAuth(key string) echo.MiddlewareFunc {
	want := []byte(key)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipHealth(c) || c.Request().Method == http.MethodOptions {
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), want) != 1 {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="knowledge-base"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid API key")
			}
			return next(c)
		}
	}
}

// rateLimiter throttles each client IP to perSecond requests.
func rateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: skipHealth,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
	})
}

func cors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	})
}

func bodyLimit(settings domain.ServerSettings) echo.MiddlewareFunc {
	mb := settings.MaxUploadMB
	if mb <= 0 {
		mb = domain.DefaultAppSettings().Server.MaxUploadMB
	}
	return middleware.BodyLimit(fmt.Sprintf("%dM", mb))
}
