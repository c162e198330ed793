package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"triplemerge/internal/database"
	"triplemerge/internal/game"
	"triplemerge/internal/i18n"
	"triplemerge/internal/scores"
	"triplemerge/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstCell spawns every tile in the first free cell with a fixed draw
type firstCell struct{ draw float64 }

func (firstCell) Intn(int) int       { return 0 }
func (f firstCell) Float64() float64 { return f.draw }

func drawFor(t *testing.T, v game.Value) float64 {
	t.Helper()
	for d := 0.0; d < 1; d += 1e-4 {
		if game.SpawnValue(d) == v {
			return d
		}
	}
	t.Fatalf("no draw spawns %v", v)
	return 0
}

func newTestTerminal(t *testing.T, spawn game.Value) (*terminal, *bytes.Buffer, database.Database) {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "play.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.CreatePlayer(&models.Player{ID: localPlayerID, Name: "tester"}))

	var out bytes.Buffer
	ui := &terminal{
		out:      &out,
		tr:       i18n.New("en", []string{"en"}),
		lang:     "en",
		db:       db,
		playerID: localPlayerID,
		log:      zerolog.Nop(),
	}
	store := scores.NewPlayerStore(localPlayerID, nil, db, zerolog.Nop())
	ui.manager = game.NewManager(4, ui, store, game.WithRand(firstCell{draw: drawFor(t, spawn)}))
	return ui, &out, db
}

func TestRender(t *testing.T) {
	grid := game.NewGrid(3)
	grid.InsertTile(game.NewTile(game.Position{X: 1, Y: 0}, game.Num(27)))
	grid.InsertTile(game.NewTile(game.Position{X: 0, Y: 2}, game.Token("Z7")))

	out := render(grid.Serialize(), game.Metadata{Score: 39, BestScore: 120})
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "score: 39  best: 120", lines[0])
	assert.Equal(t, "+------+------+------+", lines[1])
	assert.Equal(t, "|      |  27  |      |", lines[2])
	assert.Equal(t, "|  Z7  |      |      |", lines[6])
	assert.Len(t, lines, 8)
}

func TestKeyInputs(t *testing.T) {
	inputs, quit := keyInputs("wDsa kljh")
	assert.False(t, quit)
	require.Len(t, inputs, 8)
	assert.Equal(t, game.MoveInput(game.DirectionUp), inputs[0])
	assert.Equal(t, game.MoveInput(game.DirectionRight), inputs[1])
	assert.Equal(t, game.MoveInput(game.DirectionDown), inputs[2])
	assert.Equal(t, game.MoveInput(game.DirectionLeft), inputs[3])
	assert.Equal(t, game.MoveInput(game.DirectionUp), inputs[4])
	assert.Equal(t, game.MoveInput(game.DirectionLeft), inputs[7])

	inputs, quit = keyInputs("rcq w")
	assert.True(t, quit)
	require.Len(t, inputs, 2)
	assert.Equal(t, game.InputRestart, inputs[0].Kind)
	assert.Equal(t, game.InputKeepPlaying, inputs[1].Kind)
}

func TestLocaleFromEnv(t *testing.T) {
	assert.Equal(t, "zh-CN", localeFromEnv("zh_CN.UTF-8"))
	assert.Equal(t, "en-US", localeFromEnv("en_US"))
	assert.Equal(t, "de-DE", localeFromEnv("de_DE@euro"))
	assert.Equal(t, "", localeFromEnv("C.UTF-8"))
	assert.Equal(t, "", localeFromEnv(""))
}

func TestFinishedGameSavedOnce(t *testing.T) {
	ui, out, db := newTestTerminal(t, game.Num(4))

	ctx := context.Background()
	inputs := make(chan game.Input)
	go readKeys(ctx, strings.NewReader("sss\nsw\n"), inputs)
	require.NoError(t, ui.manager.Run(ctx, inputs))
	ui.finish()

	assert.Contains(t, out.String(), "Game over!")
	assert.True(t, ui.manager.Over())

	best, err := db.GetBestScore(localPlayerID)
	require.NoError(t, err)
	assert.Equal(t, 12, best)

	board, err := db.GetLeaderboard(models.LeaderboardAll, 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 12, board[0].Score)
	assert.Equal(t, "tester", board[0].PlayerName)
}

func TestQuitSavesUnfinishedGame(t *testing.T) {
	ui, _, db := newTestTerminal(t, game.Num(1))

	ctx := context.Background()
	inputs := make(chan game.Input)
	// Three 1s merge into a 3 on the third move down
	go readKeys(ctx, strings.NewReader("sssq\nssss\n"), inputs)
	require.NoError(t, ui.manager.Run(ctx, inputs))
	ui.finish()

	assert.False(t, ui.manager.Over())
	best, err := db.GetBestScore(localPlayerID)
	require.NoError(t, err)
	assert.Equal(t, 3, best)
}
