// Package scores backs the engine's best-score store with the cache and
// the finished-game records.
package scores

import (
	"errors"
	"sync"

	"triplemerge/internal/cache"
	"triplemerge/internal/game"

	"github.com/rs/zerolog"
)

// BestScoreSource reads a player's best finished-game score
type BestScoreSource interface {
	GetBestScore(playerID string) (int, error)
}

// PlayerStore is a game.ScoreStore for one player.
// Reads are served from memory once loaded; writes go through to the cache.
type PlayerStore struct {
	playerID string
	cache    cache.Cache
	records  BestScoreSource
	log      zerolog.Logger

	mu     sync.Mutex
	best   int
	loaded bool
}

var _ game.ScoreStore = (*PlayerStore)(nil)

// NewPlayerStore creates a store; c and records may each be nil
func NewPlayerStore(playerID string, c cache.Cache, records BestScoreSource, logger zerolog.Logger) *PlayerStore {
	return &PlayerStore{
		playerID: playerID,
		cache:    c,
		records:  records,
		log:      logger.With().Str("player", playerID).Logger(),
	}
}

// Get returns the player's best score
func (s *PlayerStore) Get() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.best = s.load()
		s.loaded = true
	}
	return s.best
}

func (s *PlayerStore) load() int {
	if s.cache != nil {
		best, err := s.cache.GetBestScore(s.playerID)
		if err == nil {
			return best
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("failed to read cached best score")
		}
	}

	if s.records == nil {
		return 0
	}

	best, err := s.records.GetBestScore(s.playerID)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read best score from records")
		return 0
	}

	if s.cache != nil && best > 0 {
		if _, err := s.cache.RaiseBestScore(s.playerID, best); err != nil {
			s.log.Warn().Err(err).Msg("failed to warm best score cache")
		}
	}
	return best
}

// Set records a new best score
func (s *PlayerStore) Set(score int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if score <= s.best && s.loaded {
		return
	}
	s.best = score
	s.loaded = true

	if s.cache == nil {
		return
	}
	best, err := s.cache.RaiseBestScore(s.playerID, score)
	if err != nil {
		s.log.Warn().Err(err).Int("score", score).Msg("failed to store best score")
		return
	}
	// Another session of the same player may have gone higher
	if best > s.best {
		s.best = best
	}
}
