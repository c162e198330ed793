package handlers

import (
	"errors"
	"net/http"
	"strings"

	"triplemerge/internal/auth"
	"triplemerge/internal/database"
	"triplemerge/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Context keys set by the auth middleware
const (
	PlayerIDKey = "player_id"
	ClaimsKey   = "claims"
)

const tokenCookie = "auth_token"

// SessionHandler issues and inspects anonymous player sessions
type SessionHandler struct {
	tokens *auth.TokenService
	db     database.Database
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(tokens *auth.TokenService, db database.Database) *SessionHandler {
	return &SessionHandler{
		tokens: tokens,
		db:     db,
	}
}

type createSessionRequest struct {
	Name string `json:"name"`
}

// CreateSession registers a new player and returns its token
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid session request"})
			return
		}
	}

	player := auth.NewPlayer(req.Name)
	if err := h.db.CreatePlayer(player); err != nil {
		log.Error().Err(err).Msg("failed to create player")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create player"})
		return
	}

	token, err := h.tokens.GenerateToken(player.ID)
	if err != nil {
		log.Error().Err(err).Str("player", player.ID).Msg("failed to issue token")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to issue token"})
		return
	}

	// Set JWT token as HTTP-only cookie
	c.SetCookie(tokenCookie, token, 3600*24*30, "/", "", isHTTPS(c), true)

	c.JSON(http.StatusCreated, models.SessionResponse{
		Player: *player,
		Token:  token,
	})
}

// Me returns the current player
func (h *SessionHandler) Me(c *gin.Context) {
	player, err := h.db.GetPlayer(c.GetString(PlayerIDKey))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Player not found"})
			return
		}
		log.Error().Err(err).Msg("failed to get player")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get player"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"player": player})
}

// Logout revokes the current token
func (h *SessionHandler) Logout(c *gin.Context) {
	if claims, ok := c.Get(ClaimsKey); ok {
		if err := h.tokens.Revoke(claims.(*auth.Claims)); err != nil {
			log.Warn().Err(err).Msg("failed to revoke token")
		}
	}

	// Clear the auth cookie
	c.SetCookie(tokenCookie, "", -1, "/", "", isHTTPS(c), true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// TokenFromRequest reads a token from the Authorization header, the cookie
// or the token query parameter, in that order
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// AuthMiddleware validates JWT tokens
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Missing authentication token",
			})
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Invalid authentication token",
			})
			return
		}

		c.Set(PlayerIDKey, claims.PlayerID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// isHTTPS determines if the request is using HTTPS
// Checks TLS connection, X-Forwarded-Proto header, and X-Forwarded-Ssl header
func isHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil ||
		c.GetHeader("X-Forwarded-Proto") == "https" ||
		c.GetHeader("X-Forwarded-Ssl") == "on"
}
