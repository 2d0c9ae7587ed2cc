package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims UserClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret())
	require.NoError(t, err)
	return signed
}

func validTestClaims() UserClaims {
	return UserClaims{
		UserID: "u-1",
		Email:  "jane@example.com",
		Name:   "Jane Doe",
		Role:   "citizen",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	var got *UserClaims
	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(UserContextKey).(*UserClaims)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, validTestClaims()))
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "citizen", got.Role)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsBadFormat(t *testing.T) {
	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	claims := validTestClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	handler := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, claims))
	rec := httptest.NewRecorder()

	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseTokenRoundTrip(t *testing.T) {
	claims, err := ParseToken(signTestToken(t, validTestClaims()))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireRole("authority", "admin")(next)

	withClaims := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/api/reports/r-1/status", nil)
		claims := &UserClaims{UserID: "u-1", Role: role}
		return req.WithContext(context.WithValue(req.Context(), UserContextKey, claims))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims("admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims("citizen"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/reports/r-1/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
