package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/service"
)

// RequireRoles enforces role-based access control for a route. The required
// set is declared once at route registration; RequireRoles panics on an
// unknown role so a typo in the route table fails at startup rather than
// silently allowing or denying traffic.
func RequireRoles(required ...domain.Role) echo.MiddlewareFunc {
	for _, r := range required {
		if !r.Valid() {
			panic(fmt.Sprintf("middleware: unknown role %q in route declaration", r))
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim := ClaimFrom(c)
			if claim == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if err := service.Authorize(required, claim.Role); err != nil {
				return err
			}
			return next(c)
		}
	}
}
