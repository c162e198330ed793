package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"triplemerge/internal/config"
	"triplemerge/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for tokens that fail parsing or verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned for tokens revoked by logout
	ErrTokenRevoked = errors.New("token revoked")
)

// Revocations tracks revoked token IDs
type Revocations interface {
	RevokeToken(tokenID string, expiration time.Duration) error
	IsTokenRevoked(tokenID string) bool
}

// Claims are the JWT claims issued to a player
type Claims struct {
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates anonymous player tokens
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked Revocations
}

// NewTokenService creates a token service; revoked may be nil
func NewTokenService(cfg *config.Config, revoked Revocations) *TokenService {
	return &TokenService{
		secret:  []byte(cfg.Auth.JWTSecret),
		ttl:     cfg.Auth.TokenTTL,
		revoked: revoked,
	}
}

// NewPlayer creates a player with a fresh ID and a default name if none is given
func NewPlayer(name string) *models.Player {
	id := uuid.NewString()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player-" + id[:8]
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return &models.Player{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// GenerateToken generates a JWT token for the player
func (s *TokenService) GenerateToken(playerID string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns its claims
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.PlayerID == "" {
		return nil, ErrInvalidToken
	}

	if s.revoked != nil && s.revoked.IsTokenRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke invalidates a token for the rest of its lifetime
func (s *TokenService) Revoke(claims *Claims) error {
	if s.revoked == nil {
		return nil
	}

	remaining := s.ttl
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if remaining <= 0 {
		return nil
	}
	return s.revoked.RevokeToken(claims.ID, remaining)
}
