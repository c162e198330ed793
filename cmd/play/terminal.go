package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"triplemerge/internal/database"
	"triplemerge/internal/game"
	"triplemerge/internal/i18n"
	"triplemerge/pkg/models"

	"github.com/rs/zerolog"
)

const cellWidth = 6

// terminal renders actuations as text and records finished games
type terminal struct {
	out      io.Writer
	tr       *i18n.I18n
	lang     string
	db       database.Database
	playerID string
	log      zerolog.Logger

	// Set once the manager exists; actuations run on the game goroutine
	manager  *game.Manager
	recorded bool
}

var _ game.Actuator = (*terminal)(nil)

// Actuate draws the board and stores the game the first time it ends
func (t *terminal) Actuate(grid game.GridState, meta game.Metadata) {
	if t.manager != nil && t.manager.Moves() == 0 {
		t.recorded = false
	}

	fmt.Fprint(t.out, render(grid, meta))
	switch {
	case meta.Over:
		fmt.Fprintln(t.out, t.tr.T(t.lang, i18n.KeyOver))
	case meta.Won && meta.Terminated:
		fmt.Fprintln(t.out, t.tr.T(t.lang, i18n.KeyWon))
	}

	if meta.Terminated && !t.recorded {
		t.record()
	}
}

// Continue clears the end-of-game status. A won game played on is recorded
// again when it ends.
func (t *terminal) Continue() {
	if t.manager != nil && t.manager.Won() && !t.manager.Over() {
		t.recorded = false
	}
	fmt.Fprintln(t.out, t.tr.T(t.lang, i18n.KeyContinue))
}

// record saves the current game; games without points are skipped
func (t *terminal) record() {
	if t.manager == nil || t.db == nil || t.manager.Score() == 0 {
		return
	}
	t.recorded = true

	record := &models.GameRecord{
		PlayerID:  t.playerID,
		Score:     t.manager.Score(),
		BestTile:  t.manager.BestTile(),
		Moves:     t.manager.Moves(),
		BoardSize: t.manager.Size(),
		Won:       t.manager.Won(),
		Over:      t.manager.Over(),
		CreatedAt: time.Now().UTC(),
	}
	if err := t.db.SaveGame(record); err != nil {
		t.log.Error().Err(err).Msg("failed to save game")
	}
}

// finish saves a game quit before it ended
func (t *terminal) finish() {
	if !t.recorded {
		t.record()
	}
}

// render draws the board with x to the right and y downwards
func render(grid game.GridState, meta game.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nscore: %d  best: %d\n", meta.Score, meta.BestScore)

	border := "+" + strings.Repeat(strings.Repeat("-", cellWidth)+"+", grid.Size) + "\n"
	b.WriteString(border)
	for y := 0; y < grid.Size; y++ {
		b.WriteString("|")
		for x := 0; x < grid.Size; x++ {
			label := ""
			if tile := grid.Tile(x, y); tile != nil {
				label = tile.Value.String()
			}
			b.WriteString(center(label, cellWidth))
			b.WriteString("|")
		}
		b.WriteString("\n")
		b.WriteString(border)
	}
	return b.String()
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// keyInputs maps typed keys to game inputs; quit reports a q
func keyInputs(line string) (inputs []game.Input, quit bool) {
	for _, r := range strings.ToLower(line) {
		switch r {
		case 'w', 'k':
			inputs = append(inputs, game.MoveInput(game.DirectionUp))
		case 'd', 'l':
			inputs = append(inputs, game.MoveInput(game.DirectionRight))
		case 's', 'j':
			inputs = append(inputs, game.MoveInput(game.DirectionDown))
		case 'a', 'h':
			inputs = append(inputs, game.MoveInput(game.DirectionLeft))
		case 'r':
			inputs = append(inputs, game.Input{Kind: game.InputRestart})
		case 'c':
			inputs = append(inputs, game.Input{Kind: game.InputKeepPlaying})
		case 'q':
			return inputs, true
		}
	}
	return inputs, false
}

// localeFromEnv turns a POSIX locale such as zh_CN.UTF-8 into zh-CN
func localeFromEnv(value string) string {
	value, _, _ = strings.Cut(value, ".")
	value, _, _ = strings.Cut(value, "@")
	if value == "C" || value == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(value, "_", "-")
}
