package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"triplemerge/internal/cache"
	"triplemerge/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(ttl time.Duration) *config.Config {
	return &config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl}}
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService(testConfig(time.Hour), nil)

	token, err := s.GenerateToken("player-1")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "player-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	s := NewTokenService(testConfig(-time.Minute), nil)

	token, err := s.GenerateToken("player-1")
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestForeignSecretRejected(t *testing.T) {
	other := NewTokenService(&config.Config{Auth: config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}}, nil)
	token, err := other.GenerateToken("player-1")
	require.NoError(t, err)

	_, err = NewTokenService(testConfig(time.Hour), nil).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnsignedTokenRejected(t *testing.T) {
	claims := Claims{PlayerID: "player-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService(testConfig(time.Hour), nil).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedTokenRejected(t *testing.T) {
	s := NewTokenService(testConfig(time.Hour), cache.NewMemoryCache())

	token, err := s.GenerateToken("player-1")
	require.NoError(t, err)
	claims, err := s.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(claims))

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("  ")
	assert.True(t, strings.HasPrefix(p.Name, "Player-"))
	assert.Len(t, p.ID, 36)

	named := NewPlayer(strings.Repeat("x", 100))
	assert.Len(t, named.Name, 64)
	assert.NotEqual(t, p.ID, named.ID)
}
