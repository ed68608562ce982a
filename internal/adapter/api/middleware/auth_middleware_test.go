package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwave/internal/infrastructure/token"
)

func authTestHandler(c echo.Context) error {
	return c.String(http.StatusOK, c.Get("uid").(string))
}

func performRequest(t *testing.T, m *AuthMiddleware, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := m.Authenticate(authTestHandler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthenticateSetsUID(t *testing.T) {
	tm := token.NewJWTManager("test-secret", time.Hour)
	bearer, err := tm.Generate("u1")
	require.NoError(t, err)

	rec := performRequest(t, NewAuthMiddleware(tm), "Bearer "+bearer)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthenticateMissingHeader(t *testing.T) {
	tm := token.NewJWTManager("test-secret", time.Hour)

	rec := performRequest(t, NewAuthMiddleware(tm), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	tm := token.NewJWTManager("test-secret", time.Hour)

	rec := performRequest(t, NewAuthMiddleware(tm), "Token abc123")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	tm := token.NewJWTManager("test-secret", time.Hour)

	rec := performRequest(t, NewAuthMiddleware(tm), "Bearer garbage")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
