package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jobhuntboard/jobhuntboard/internal/config"
	"github.com/jobhuntboard/jobhuntboard/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	return cfg
}

func TestGenerateAccessTokenClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	u := &models.User{
		Sub:     "user-123",
		Name:    "山田太郎",
		Email:   "taro@example.com",
		Picture: "https://example.com/p.png",
	}
	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, u.Sub, claims["sub"])
	require.Equal(t, u.Name, claims["name"])
	require.Equal(t, u.Email, claims["email"])
	require.Equal(t, u.Picture, claims["picture"])
}

func TestGenerateAccessTokenExpiry(t *testing.T) {
	cfg := testConfig("another-secret-32-bytes-longgggg")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{Sub: "u2"}, time.Second)
	require.NoError(t, err)

	time.Sleep(2 * time.Second)
	_, err = jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.Error(t, err)
}

func TestParseWrongSecretFails(t *testing.T) {
	cfg := testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{Sub: "u3"}, 2*time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte("different-secret-xxxxxxxxxxxxxxxx"), nil
	})
	require.Error(t, err)
}

func TestParseAlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`))
	_, err := jwt.Parse(headerEnc+"."+payloadEnc+".", func(*jwt.Token) (interface{}, error) {
		return []byte("x"), nil
	})
	require.Error(t, err)
}

func TestParseTamperedPayloadFails(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{Sub: "user-t"}, 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	tampered := strings.Replace(string(payload), "user-t", "attacker", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = jwt.Parse(strings.Join(parts, "."), func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.Secret), nil
	})
	require.Error(t, err)
}
