package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runJWTMiddleware(secret, authHeader string) *httptest.ResponseRecorder {
	handler := JWTAuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddlewareValidToken(t *testing.T) {
	token := signToken(t, testSecret, time.Now().Add(time.Hour))
	rec := runJWTMiddleware(testSecret, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", time.Now().Add(time.Hour))},
		{"expired token", "Bearer " + signToken(t, testSecret, time.Now().Add(-time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runJWTMiddleware(testSecret, tt.authHeader)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTAuthMiddlewareDisabledWithoutSecret(t *testing.T) {
	rec := runJWTMiddleware("", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
