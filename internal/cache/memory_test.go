package cache

import (
	"errors"
	"testing"
	"time"

	"triplemerge/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache()

	var got map[string]int
	assert.True(t, errors.Is(c.Get("missing", &got), ErrCacheMiss))

	require.NoError(t, c.Set("k", map[string]int{"a": 1}, 0))
	require.NoError(t, c.Get("k", &got))
	assert.Equal(t, 1, got["a"])
	assert.True(t, c.Exists("k"))

	require.NoError(t, c.Delete("k"))
	assert.False(t, c.Exists("k"))
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("k", 1, time.Minute))
	assert.True(t, c.Exists("k"))

	now = now.Add(2 * time.Minute)
	assert.False(t, c.Exists("k"))
}

func TestMemoryCacheLeaderboards(t *testing.T) {
	c := NewMemoryCache()
	entries := []models.LeaderboardEntry{{PlayerID: "p", Score: 81, Rank: 1}}

	for _, lt := range models.LeaderboardTypes {
		require.NoError(t, c.SetLeaderboard(lt, entries, time.Minute))
	}

	got, err := c.GetLeaderboard(models.LeaderboardDaily)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Score, got[0].Score)

	require.NoError(t, InvalidateLeaderboards(c))
	for _, lt := range models.LeaderboardTypes {
		_, err := c.GetLeaderboard(lt)
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
}

func TestMemoryCacheRaiseBestScore(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.GetBestScore("p")
	assert.ErrorIs(t, err, ErrCacheMiss)

	best, err := c.RaiseBestScore("p", 39)
	require.NoError(t, err)
	assert.Equal(t, 39, best)

	best, err = c.RaiseBestScore("p", 12)
	require.NoError(t, err)
	assert.Equal(t, 39, best)

	got, err := c.GetBestScore("p")
	require.NoError(t, err)
	assert.Equal(t, 39, got)
}

func TestMemoryCacheRevokedTokens(t *testing.T) {
	c := NewMemoryCache()
	assert.False(t, c.IsTokenRevoked("jti"))
	require.NoError(t, c.RevokeToken("jti", time.Hour))
	assert.True(t, c.IsTokenRevoked("jti"))
}
