package auth

import (
	"testing"
	"time"

	"digilinex/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, 42, "a@b.c", "ADMIN")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, 1, "a@b.c", "USER")
	require.NoError(t, err)

	other := testConfig()
	other.AccessSecret = "other"
	_, err = ParseAccessToken(other, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessExpiry = -time.Minute
	tok, err := GenerateAccessToken(cfg, 1, "a@b.c", "USER")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	cfg := testConfig()
	pair, err := GeneratePair(cfg, 7, "a@b.c", "USER")
	require.NoError(t, err)

	id, err := ParseRefreshToken(cfg, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	_, err = ParseRefreshToken(cfg, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
