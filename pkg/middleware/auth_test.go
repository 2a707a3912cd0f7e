package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Principal, error) {
	if raw == "goodtoken" {
		return Principal{UserID: "user1", Username: "alice"}, nil
	}
	return Principal{}, fmt.Errorf("invalid token")
}

func serveAuth(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	reached := false
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	if rw.Code == http.StatusUnauthorized {
		require.False(t, reached, "handler must not run after a 401")
	}
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serveAuth(t, "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.JSONEq(t, `{"error":"Not authorized, no token"}`, rw.Body.String())
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Basic abc", "Bearer", "Bearer a b", "Bearerx goodtoken"} {
		rw := serveAuth(t, h)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	rw := serveAuth(t, "Bearer badtoken")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.JSONEq(t, `{"error":"Not authorized, token failed"}`, rw.Body.String())
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		v, ok := c.Get(PrincipalKey)
		require.True(t, ok)
		fromCtx, ok := PrincipalFromContext(c.Request.Context())
		require.True(t, ok)
		require.Equal(t, v, fromCtx)
		c.JSON(http.StatusOK, gin.H{"userId": fromCtx.UserID})
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user1", got["userId"])
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	require.False(t, ok)
	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), Principal{}))
	require.False(t, ok)
}
