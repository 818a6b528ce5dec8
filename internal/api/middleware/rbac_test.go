package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

func newClaimContext(e *echo.Echo, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetClaim(c, &domain.Claim{SubjectID: "u1", Role: role})
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	e := echo.New()
	c, rec := newClaimContext(e, domain.RoleSuperAdmin)

	called := false
	handler := RequireRoles(domain.RoleSuperAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Denies(t *testing.T) {
	e := echo.New()
	c, _ := newClaimContext(e, domain.RoleAdmin)

	handler := RequireRoles(domain.RoleSuperAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRequireRoles_EmptySetAllowsAuthenticated(t *testing.T) {
	e := echo.New()
	c, _ := newClaimContext(e, domain.RoleUser)

	called := false
	handler := RequireRoles()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRoles_MissingClaim(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoles_UnknownRolePanicsAtRegistration(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown role declaration")
		}
	}()
	RequireRoles("OVERLORD")
}
