package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, email, password string) (*domain.Claim, error)
	issueTokenFn   func(claim domain.Claim) (string, int64, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (*domain.Claim, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubAuthService) IssueToken(claim domain.Claim) (string, int64, error) {
	return s.issueTokenFn(claim)
}

type stubThrottle struct {
	blocked  bool
	failures int
	resets   int
}

func (t *stubThrottle) Blocked(context.Context, string) (bool, error) { return t.blocked, nil }
func (t *stubThrottle) RecordFailure(context.Context, string) error   { t.failures++; return nil }
func (t *stubThrottle) Reset(context.Context, string) error           { t.resets++; return nil }

func newLoginContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLogin_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, email, password string) (*domain.Claim, error) {
			if email != "alice@example.com" || password != "s3cret" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return &domain.Claim{SubjectID: "u1", Email: email, Role: domain.RoleAdmin}, nil
		},
		issueTokenFn: func(claim domain.Claim) (string, int64, error) {
			return "signed-token", 1234567890, nil
		},
	}
	throttle := &stubThrottle{}
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, rec := newLoginContext(e, `{"email":"alice@example.com","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessToken != "signed-token" || resp.ExpiresAt != 1234567890 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected throttle reset after success")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.Claim, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	throttle := &stubThrottle{}
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, _ := newLoginContext(e, `{"email":"alice@example.com","password":"wrong"}`)
	err := h.Login(c)
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if throttle.failures != 1 {
		t.Fatalf("expected failure recorded in throttle")
	}
}

func TestLogin_Throttled(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.Claim, error) {
			t.Fatalf("core must not be invoked while throttled")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, &stubThrottle{blocked: true}, zerolog.Nop())

	c, _ := newLoginContext(e, `{"email":"alice@example.com","password":"pw"}`)
	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestLogin_BadPayload(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewAuthHandler(&stubAuthService{}, nil, zerolog.Nop())

	for _, body := range []string{
		`{"email":"not-an-email","password":"pw"}`,
		`{"password":"pw"}`,
		`{"email":"alice@example.com"}`,
	} {
		c, _ := newLoginContext(e, body)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}
