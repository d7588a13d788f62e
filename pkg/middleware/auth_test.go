package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jobhuntboard/jobhuntboard/internal/sessions"
	"github.com/jobhuntboard/jobhuntboard/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	claims map[string]interface{}
}

func (t *staticToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*m = t.claims
	return nil
}

// staticVerifier accepts a single raw token value.
type staticVerifier struct {
	accept string
}

func (v *staticVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	if raw != v.accept {
		return nil, fmt.Errorf("token not recognized")
	}
	return &staticToken{claims: map[string]interface{}{"sub": "user-1", "email": "user@example.com"}}, nil
}

func authRouter(t *testing.T, ver middleware.Verifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.GET("/me", middleware.AuthMiddleware(ver), func(c *gin.Context) {
		claims, ok := c.Get("claims")
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"claims": claims})
	})
	return g
}

func doAuth(g *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	g := authRouter(t, &staticVerifier{accept: "ok"})
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "").Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	g := authRouter(t, &staticVerifier{accept: "ok"})
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "Basic abc").Code)
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "Bearer ").Code)
}

func TestAuthMiddlewareRejectsUnknownToken(t *testing.T) {
	g := authRouter(t, &staticVerifier{accept: "ok"})
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "Bearer other").Code)
}

func TestAuthMiddlewarePassesClaims(t *testing.T) {
	g := authRouter(t, &staticVerifier{accept: "ok"})
	rw := doAuth(g, "Bearer ok")
	require.Equal(t, http.StatusOK, rw.Code)

	var body struct {
		Claims map[string]interface{} `json:"claims"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	require.Equal(t, "user-1", body.Claims["sub"])
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	middleware.RevocationCheck = sessions.IsAccessTokenBlacklisted
	defer func() { middleware.RevocationCheck = nil }()

	// The verifier would accept this token; revocation must win.
	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), "ok", 5*time.Second))

	g := authRouter(t, &staticVerifier{accept: "ok"})
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "Bearer ok").Code)
}
