package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/cinevn/backend/internal/utils"
)

const testSecret = "test-signing-secret"

func protectedEcho(t *testing.T) *echo.Echo {
    t.Helper()
    e := echo.New()
    e.GET("/protected", func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"user": c.Get("user_id")})
    }, JWTAuth(testSecret))
    return e
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, 15)
    require.NoError(t, err)

    e := protectedEcho(t)
    req := httptest.NewRequest(http.MethodGet, "/protected", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "42")
}

func TestJWTAuthRejections(t *testing.T) {
    e := protectedEcho(t)

    t.Run("missing header", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/protected", nil)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })

    t.Run("garbage token", func(t *testing.T) {
        req := httptest.NewRequest(http.MethodGet, "/protected", nil)
        req.Header.Set("Authorization", "Bearer not.a.jwt")
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })

    t.Run("wrong secret", func(t *testing.T) {
        tok, err := utils.NewAccessToken("another-secret", 42, 15)
        require.NoError(t, err)
        req := httptest.NewRequest(http.MethodGet, "/protected", nil)
        req.Header.Set("Authorization", "Bearer "+tok.Token)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })

    t.Run("expired token", func(t *testing.T) {
        tok, err := utils.NewAccessToken(testSecret, 42, -1)
        require.NoError(t, err)
        req := httptest.NewRequest(http.MethodGet, "/protected", nil)
        req.Header.Set("Authorization", "Bearer "+tok.Token)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })
}
