package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"triplemerge/pkg/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process Cache used when Redis is disabled
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Close is a no-op
func (m *MemoryCache) Close() error {
	return nil
}

// Set stores a JSON-encoded value
func (m *MemoryCache) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	entry := memoryEntry{data: data}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) lookup(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.data, true
}

// Get decodes a stored value into dest
func (m *MemoryCache) Get(key string, dest interface{}) error {
	data, ok := m.lookup(key)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key
func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether an unexpired key is present
func (m *MemoryCache) Exists(key string) bool {
	_, ok := m.lookup(key)
	return ok
}

// SetLeaderboard caches leaderboard entries
func (m *MemoryCache) SetLeaderboard(leaderboardType models.LeaderboardType, entries []models.LeaderboardEntry, expiration time.Duration) error {
	return m.Set(leaderboardKey(leaderboardType), entries, expiration)
}

// GetLeaderboard retrieves cached leaderboard entries
func (m *MemoryCache) GetLeaderboard(leaderboardType models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := m.Get(leaderboardKey(leaderboardType), &entries)
	return entries, err
}

// InvalidateLeaderboard removes a cached leaderboard
func (m *MemoryCache) InvalidateLeaderboard(leaderboardType models.LeaderboardType) error {
	return m.Delete(leaderboardKey(leaderboardType))
}

// GetBestScore returns the cached best score for a player
func (m *MemoryCache) GetBestScore(playerID string) (int, error) {
	var best int
	if err := m.Get(bestScoreKey(playerID), &best); err != nil {
		return 0, err
	}
	return best, nil
}

// RaiseBestScore stores score if it beats the cached best and returns the best
func (m *MemoryCache) RaiseBestScore(playerID string, score int) (int, error) {
	key := bestScoreKey(playerID)

	m.mu.Lock()
	defer m.mu.Unlock()

	best := 0
	if entry, ok := m.entries[key]; ok {
		if err := json.Unmarshal(entry.data, &best); err != nil {
			return 0, err
		}
	}
	if score <= best {
		return best, nil
	}

	data, err := json.Marshal(score)
	if err != nil {
		return 0, err
	}
	m.entries[key] = memoryEntry{data: data}
	return score, nil
}

// RevokeToken marks a token ID as revoked
func (m *MemoryCache) RevokeToken(tokenID string, expiration time.Duration) error {
	return m.Set(revokedKey(tokenID), "revoked", expiration)
}

// IsTokenRevoked checks if a token ID has been revoked
func (m *MemoryCache) IsTokenRevoked(tokenID string) bool {
	return m.Exists(revokedKey(tokenID))
}
