package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, login string) string {
	t.Helper()
	claims := &LoginClaims{
		Login: login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthExtractsLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "alice"))
	c := e.NewContext(req, httptest.NewRecorder())

	var seen string
	handler := JWTAuthMiddleware()(func(c echo.Context) error {
		seen = LoginFromContext(c)
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "alice", seen)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	e := echo.New()

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + signToken(t, "other-secret", "alice"),
		"no login claim": "Bearer " + signToken(t, "test-secret", ""),
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		handler := JWTAuthMiddleware()(func(c echo.Context) error { return nil })
		err := handler(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, name)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code, name)
	}
}
