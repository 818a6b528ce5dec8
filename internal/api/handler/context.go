package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesskeeper/identity-system/internal/api/middleware"
	"github.com/accesskeeper/identity-system/internal/core/domain"
)

// ctxClaim extracts the identity claim injected by the Auth middleware and
// fast-fails when it is absent: presence proves the middleware ran, and no
// role-authority handler may execute without an established caller identity.
func ctxClaim(c echo.Context) (*domain.Claim, error) {
	claim := middleware.ClaimFrom(c)
	if claim == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claim, nil
}
