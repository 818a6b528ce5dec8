package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accesskeeper/identity-system/internal/api/metrics"
	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

// Throttle limits failed login attempts per email. The redis implementation
// lives in infrastructure; a nil Throttle disables lockout.
type Throttle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type AuthHandler struct {
	authService ports.AuthService
	throttle    Throttle
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, throttle Throttle, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, throttle: throttle, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	if h.throttle != nil {
		blocked, err := h.throttle.Blocked(ctx, req.Email)
		if err != nil {
			// Redis being down must not lock everyone out.
			h.logger.Warn().Err(err).Msg("login throttle unavailable")
		} else if blocked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed attempts, retry later")
		}
	}

	claim, err := h.authService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			if h.throttle != nil {
				if terr := h.throttle.RecordFailure(ctx, req.Email); terr != nil {
					h.logger.Warn().Err(terr).Msg("failed to record login failure")
				}
			}
		}
		return err
	}

	token, expiresAt, err := h.authService.IssueToken(*claim)
	if err != nil {
		return err
	}

	if h.throttle != nil {
		if terr := h.throttle.Reset(ctx, req.Email); terr != nil {
			h.logger.Warn().Err(terr).Msg("failed to reset login throttle")
		}
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{AccessToken: token, ExpiresAt: expiresAt})
}
