package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var operator string
	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		operator, _ = c.Get(OperatorIDKey).(string)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, operator, called
}

func TestAuthMiddleware_OperatorClaim(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"operator_id": "op-7",
		"sub":         "someone-else",
	})

	rec, operator, called := runAuth(t, "Bearer "+token)
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if operator != "op-7" {
		t.Fatalf("expected operator op-7, got %q", operator)
	}
}

func TestAuthMiddleware_SubjectFallback(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"sub": "op-9"})

	_, operator, called := runAuth(t, "bearer "+token)
	if !called || operator != "op-9" {
		t.Fatalf("expected operator op-9, got %q (called=%v)", operator, called)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"operator_id": "op"})},
		{"wrong algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS384, []byte("secret"), jwt.MapClaims{"operator_id": "op"})},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
			"operator_id": "op",
			"exp":         time.Now().Add(-time.Minute).Unix(),
		})},
		{"no identity", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"role": "dispatcher"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := runAuth(t, tt.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
