package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func TestSessionRoundTrip(t *testing.T) {
	s := Session{OperatorID: "op-1", OperatorName: "Ana", Roles: []string{"lab_tech"}}
	ctx := WithSession(context.Background(), s)

	got := SessionFromContext(ctx)
	if got.OperatorID != "op-1" || got.OperatorName != "Ana" {
		t.Errorf("unexpected session: %+v", got)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "lab_tech" {
		t.Errorf("unexpected roles: %v", got.Roles)
	}
}

func TestSessionFromEmptyContext(t *testing.T) {
	got := SessionFromContext(context.Background())
	if got.OperatorID != "" || got.Roles != nil {
		t.Errorf("expected zero session, got %+v", got)
	}
}

func signToken(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	key := []byte("test-secret")
	tokenStr := signToken(t, key, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Luis",
		Roles: []string{"lab_tech"},
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		s := SessionFromContext(c.Request().Context())
		if s.OperatorID != "op-9" {
			t.Errorf("expected op-9, got %s", s.OperatorID)
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := JWTMiddleware(JWTConfig{SigningKey: key})
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})
	err := mw(func(c echo.Context) error { return nil })(c)
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTMiddleware(JWTConfig{SigningKey: []byte("k")})
	err := mw(func(c echo.Context) error { return nil })(c)
	if err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(roles []string, required ...string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		ctx := WithSession(c.Request().Context(), Session{Roles: roles})
		c.SetRequest(c.Request().WithContext(ctx))
		mw := RequireRole(required...)
		return mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c)
	}

	if err := run([]string{"lab_tech"}, "lab_tech"); err != nil {
		t.Errorf("lab_tech should pass: %v", err)
	}
	if err := run([]string{"admin"}, "physician"); err != nil {
		t.Errorf("admin should pass any role check: %v", err)
	}
	if err := run([]string{"reception"}, "lab_tech"); err == nil {
		t.Error("reception should be rejected")
	}
}
