package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"triplemerge/internal/cache"
	"triplemerge/internal/database"
	"triplemerge/internal/scores"
	"triplemerge/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LeaderboardHandler handles leaderboard and best-score requests
type LeaderboardHandler struct {
	db         database.Database
	cache      cache.Cache
	ttl        time.Duration
	maxEntries int
}

// NewLeaderboardHandler creates a new leaderboard handler; c may be nil
func NewLeaderboardHandler(db database.Database, c cache.Cache, ttl time.Duration, maxEntries int) *LeaderboardHandler {
	return &LeaderboardHandler{
		db:         db,
		cache:      c,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Leaderboard returns the top entries, served from cache when possible
func (h *LeaderboardHandler) Leaderboard(lbType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 || limit > h.maxEntries {
		limit = h.maxEntries
	}

	if h.cache != nil {
		entries, err := h.cache.GetLeaderboard(lbType)
		if err == nil {
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return entries, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("type", string(lbType)).Msg("leaderboard cache read failed")
		}
	}

	// Always query the full page so the cached copy serves any limit
	entries, err := h.db.GetLeaderboard(lbType, h.maxEntries)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	if h.cache != nil {
		if err := h.cache.SetLeaderboard(lbType, entries, h.ttl); err != nil {
			log.Warn().Err(err).Str("type", string(lbType)).Msg("leaderboard cache write failed")
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetLeaderboard handles public leaderboard requests
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	lbType := models.LeaderboardType(c.DefaultQuery("type", string(models.LeaderboardDaily)))
	if !lbType.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid leaderboard type. Must be one of: daily, weekly, monthly, all",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.maxEntries)))
	if err != nil {
		limit = h.maxEntries
	}

	entries, err := h.Leaderboard(lbType, limit)
	if err != nil {
		log.Error().Err(err).Str("type", string(lbType)).Msg("failed to get leaderboard")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, models.LeaderboardResponse{
		Type:     lbType,
		Rankings: entries,
	})
}

// GetBestScore returns the authenticated player's best score
func (h *LeaderboardHandler) GetBestScore(c *gin.Context) {
	playerID := c.GetString(PlayerIDKey)
	store := scores.NewPlayerStore(playerID, h.cache, h.db, log.Logger)

	c.JSON(http.StatusOK, models.BestScoreResponse{
		PlayerID:  playerID,
		BestScore: store.Get(),
	})
}
