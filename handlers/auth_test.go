package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jobhuntboard/jobhuntboard/internal/config"
	"github.com/jobhuntboard/jobhuntboard/internal/identity"
	"github.com/jobhuntboard/jobhuntboard/internal/models"
	"github.com/jobhuntboard/jobhuntboard/internal/sessions"
	"github.com/jobhuntboard/jobhuntboard/internal/tokens"
	"github.com/jobhuntboard/jobhuntboard/internal/users"
)

type fakeUserRepo struct{}

func (f *fakeUserRepo) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (f *fakeUserRepo) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return &models.User{Sub: sub, Email: "taro@example.com", Name: "山田太郎"}, nil
}

type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	return f.store[refresh], nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func unsignedIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func newAuthFixture(t *testing.T, tokenURL string) (*gin.Engine, *identity.Provider, *fakeSessionsRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Keycloak.URL = tokenURL
	cfg.Keycloak.Realm = "jobhunt"
	cfg.Keycloak.ClientID = "board"
	cfg.JWT.Secret = "test-secret-32-bytes-xxxxxxxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour

	repo := &fakeSessionsRepo{}
	provider := identity.NewProvider()
	h := NewAuthHandler(cfg, users.NewService(&fakeUserRepo{}), sessions.NewService(repo), provider)

	r := gin.New()
	h.Register(r.Group("/"))
	return r, provider, repo
}

func TestLoginAuthCodeSignsInIdentity(t *testing.T) {
	idToken := unsignedIDToken(t, map[string]interface{}{
		"sub": "user-1", "email": "taro@example.com", "name": "山田太郎",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at", "id_token": idToken})
	}))
	defer srv.Close()

	t.Setenv("ALLOW_INSECURE_TOKEN", "true")
	r, provider, _ := newAuthFixture(t, srv.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"mode":"auth_code","code":"abc","redirect_uri":"http://localhost/cb"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got["accessToken"])
	require.NotEmpty(t, got["refreshToken"])

	cur := provider.Current()
	require.NotNil(t, cur)
	require.Equal(t, "user-1", cur.Sub)
	require.Equal(t, "山田太郎", cur.Name)
}

func TestLoginRejectsUnsupportedMode(t *testing.T) {
	r, _, _ := newAuthFixture(t, "http://keycloak.invalid")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"mode":"magic"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshRestoresIdentity(t *testing.T) {
	r, provider, repo := newAuthFixture(t, "http://keycloak.invalid")
	repo.store = map[string]*sessions.Session{
		"rft-1": {
			RefreshToken: "rft-1",
			Sub:          "user-1",
			Name:         "山田太郎",
			ExpiresAt:    time.Now().UTC().Add(time.Hour),
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refresh_token":"rft-1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "access_token")
	cur := provider.Current()
	require.NotNil(t, cur)
	require.Equal(t, "user-1", cur.Sub)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	r, _, _ := newAuthFixture(t, "http://keycloak.invalid")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refresh_token":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutSignsOutAndBlacklists(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	r, provider, repo := newAuthFixture(t, "http://keycloak.invalid")
	provider.SignIn(&identity.Identity{Sub: "user-1"})
	repo.store = map[string]*sessions.Session{
		"rft-1": {RefreshToken: "rft-1", Sub: "user-1", ExpiresAt: time.Now().UTC().Add(time.Hour)},
	}

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-32-bytes-xxxxxxxxxxx"
	access, err := tokens.GenerateAccessToken(cfg, &models.User{Sub: "user-1"}, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout",
		strings.NewReader(`{"refresh_token":"rft-1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, provider.Current())
	require.Empty(t, repo.store)

	black, err := sessions.IsAccessTokenBlacklisted(context.Background(), access)
	require.NoError(t, err)
	require.True(t, black)
}

func TestMe(t *testing.T) {
	r, provider, _ := newAuthFixture(t, "http://keycloak.invalid")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	provider.SignIn(&identity.Identity{Sub: "user-1", Email: "taro@example.com"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "taro@example.com")
}
