package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"triplemerge/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "nested", "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLitePlayers(t *testing.T) {
	db := openTestSQLite(t)

	_, err := db.GetPlayer("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, db.CreatePlayer(&models.Player{ID: "p1", Name: "first"}))
	require.NoError(t, db.CreatePlayer(&models.Player{ID: "p1", Name: "renamed"}))

	player, err := db.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", player.Name)
	assert.False(t, player.CreatedAt.IsZero())
}

func TestSQLiteBestScore(t *testing.T) {
	db := openTestSQLite(t)
	require.NoError(t, db.CreatePlayer(&models.Player{ID: "p1", Name: "one"}))

	best, err := db.GetBestScore("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, best)

	for _, score := range []int{39, 120, 81} {
		record := &models.GameRecord{PlayerID: "p1", Score: score, BoardSize: 4, Over: true}
		require.NoError(t, db.SaveGame(record))
		assert.NotEqual(t, uuid.Nil, record.ID)
	}

	best, err = db.GetBestScore("p1")
	require.NoError(t, err)
	assert.Equal(t, 120, best)
}

func TestSQLiteLeaderboardKeepsBestGamePerPlayer(t *testing.T) {
	db := openTestSQLite(t)
	require.NoError(t, db.CreatePlayer(&models.Player{ID: "a", Name: "alice"}))
	require.NoError(t, db.CreatePlayer(&models.Player{ID: "b", Name: "bob"}))
	require.NoError(t, db.CreatePlayer(&models.Player{ID: "c", Name: "carol"}))

	old := time.Now().UTC().AddDate(-2, 0, 0)
	games := []*models.GameRecord{
		{PlayerID: "a", Score: 300, BestTile: 81, Won: true},
		{PlayerID: "a", Score: 90, BestTile: 27},
		{PlayerID: "b", Score: 150, BestTile: 54},
		{PlayerID: "c", Score: 999, BestTile: 243, CreatedAt: old},
	}
	for _, g := range games {
		g.BoardSize = 4
		require.NoError(t, db.SaveGame(g))
	}

	all, err := db.GetLeaderboard(models.LeaderboardAll, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "carol", all[0].PlayerName)
	assert.Equal(t, 1, all[0].Rank)
	assert.Equal(t, "alice", all[1].PlayerName)
	assert.Equal(t, 300, all[1].Score)
	assert.Equal(t, 81, all[1].BestTile)
	assert.Equal(t, games[0].ID, all[1].GameID)
	assert.Equal(t, 3, all[2].Rank)
	assert.WithinDuration(t, old, all[0].CreatedAt, time.Second)

	daily, err := db.GetLeaderboard(models.LeaderboardDaily, 10)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "a", daily[0].PlayerID)
	assert.Equal(t, "b", daily[1].PlayerID)

	limited, err := db.GetLeaderboard(models.LeaderboardAll, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = db.GetLeaderboard(models.LeaderboardType("yearly"), 10)
	assert.Error(t, err)
}

func TestDollarNumbers(t *testing.T) {
	assert.Equal(t, "SELECT $1, $2 FROM t WHERE x = $3",
		dollarNumbers("SELECT ?, ? FROM t WHERE x = ?"))
	assert.Equal(t, "no params", questionMarks("no params"))
}

func TestTimestampScan(t *testing.T) {
	var got time.Time
	ts := &timestamp{dst: &got, layouts: sqliteDialect.timeLayouts}

	require.NoError(t, ts.Scan("2026-10-18 09:30:00.5+00:00"))
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, 9, got.Hour())

	require.NoError(t, ts.Scan([]byte("2026-10-18")))
	assert.Equal(t, 18, got.Day())

	now := time.Now()
	require.NoError(t, ts.Scan(now))
	assert.True(t, now.Equal(got))

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
