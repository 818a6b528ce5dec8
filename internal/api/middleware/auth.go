package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

// claimContextKey is the echo context key under which the decoded claim is
// stored. Handlers should use ClaimFrom rather than reading it directly.
const claimContextKey = "auth_claim"

// Auth validates the bearer token and threads the decoded claim into the
// request context.
func Auth(issuer ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claim, err := issuer.Decode(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(claimContextKey, claim)
			return next(c)
		}
	}
}

// ClaimFrom returns the claim attached by Auth, or nil when the middleware
// did not run.
func ClaimFrom(c echo.Context) *domain.Claim {
	claim, _ := c.Get(claimContextKey).(*domain.Claim)
	return claim
}

// SetClaim attaches a claim to the context. Intended for tests.
func SetClaim(c echo.Context, claim *domain.Claim) {
	c.Set(claimContextKey, claim)
}
