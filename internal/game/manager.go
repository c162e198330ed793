package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Constants for the game
const (
	DefaultSize       = 4
	MinSize           = 3
	DefaultStartTiles = 1
	WinningValue      = 27
)

// losingValues end the game when a merge produces them
var losingValues = map[int]bool{
	2:  true,
	12: true,
	15: true,
	21: true,
	24: true,
	30: true,
	54: true,
}

// Manager runs one game: it owns the grid and resolves moves against it.
// A Manager is not safe for concurrent use; hosts serialize input.
type Manager struct {
	size       int
	startTiles int
	rng        RandomSource
	actuator   Actuator
	scores     ScoreStore
	log        zerolog.Logger

	grid        *Grid
	score       int
	over        bool
	won         bool
	keepPlaying bool
	moves       int
}

// Option configures a Manager
type Option func(*Manager)

// WithRand sets the random source used for spawning
func WithRand(rng RandomSource) Option {
	return func(m *Manager) { m.rng = rng }
}

// WithStartTiles sets how many tiles a new game begins with
func WithStartTiles(n int) Option {
	return func(m *Manager) { m.startTiles = n }
}

// WithLogger attaches a logger for spawn, merge and terminal events
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager and sets up the first game.
// A nil actuator or score store is replaced with a no-op/in-memory one.
// It panics when size is below MinSize.
func NewManager(size int, actuator Actuator, scores ScoreStore, opts ...Option) *Manager {
	if size < MinSize {
		panic(fmt.Sprintf("game: board size %d is below the minimum of %d", size, MinSize))
	}
	m := &Manager{
		size:       size,
		startTiles: DefaultStartTiles,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		actuator:   actuator,
		scores:     scores,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.actuator == nil {
		m.actuator = NopActuator{}
	}
	if m.scores == nil {
		m.scores = &MemoryScoreStore{}
	}

	m.setup()
	return m
}

// Restart abandons the current game and starts a new one
func (m *Manager) Restart() {
	m.actuator.Continue()
	m.setup()
}

// KeepPlaying lets the player continue after a win
func (m *Manager) KeepPlaying() {
	m.keepPlaying = true
	m.actuator.Continue()
}

// IsGameTerminated reports whether moves are currently ignored
func (m *Manager) IsGameTerminated() bool {
	return m.over || (m.won && !m.keepPlaying)
}

func (m *Manager) setup() {
	m.grid = NewGrid(m.size)
	m.score = 0
	m.over = false
	m.won = false
	m.keepPlaying = false
	m.moves = 0

	for i := 0; i < m.startTiles; i++ {
		m.addRandomTile()
	}

	m.actuate()
}

// addRandomTile spawns one tile on a random empty cell, if there is one
func (m *Manager) addRandomTile() {
	if !m.grid.CellsAvailable() {
		return
	}

	value := SpawnValue(m.rng.Float64())
	pos, err := m.grid.RandomAvailableCell(m.rng)
	if err != nil {
		// CellsAvailable was checked above
		panic(err)
	}

	m.grid.InsertTile(NewTile(pos, value))
	m.log.Trace().Int("x", pos.X).Int("y", pos.Y).Stringer("value", value).Msg("tile spawned")
}

// actuate pushes the current state to the actuator, updating the best score first
func (m *Manager) actuate() {
	best := m.scores.Get()
	if best < m.score {
		m.scores.Set(m.score)
		best = m.score
	}

	m.actuator.Actuate(m.grid.Serialize(), Metadata{
		Score:      m.score,
		Over:       m.over,
		Won:        m.won,
		BestScore:  best,
		Terminated: m.IsGameTerminated(),
	})
}

// Move slides the board in the given direction. It reports whether any tile
// moved; a move that displaces nothing is discarded without a spawn. An
// error leaves the game exactly as it was before the call.
func (m *Manager) Move(direction Direction) (bool, error) {
	if m.IsGameTerminated() {
		return false, nil
	}

	vector, err := direction.Vector()
	if err != nil {
		return false, err
	}

	// Resolve on a copy so a failed merge cannot leave a half-applied move
	grid := m.grid.Clone()
	result, err := resolveMove(grid, vector)
	if err != nil {
		m.log.Error().Err(err).Stringer("direction", direction).Msg("move rejected")
		return false, fmt.Errorf("move %s: %w", direction, err)
	}
	if !result.moved {
		return false, nil
	}

	m.grid = grid
	m.score += result.score
	m.moves++
	if result.won {
		m.won = true
		m.log.Debug().Int("score", m.score).Msg("winning tile reached")
	}
	if result.over {
		m.over = true
		m.log.Debug().Int("score", m.score).Msg("losing tile produced")
	}

	m.addRandomTile()

	if !m.MovesAvailable() {
		m.over = true
		m.log.Debug().Int("score", m.score).Msg("no moves left")
	}

	m.actuate()
	return true, nil
}

// MovesAvailable reports whether any move can still change the board
func (m *Manager) MovesAvailable() bool {
	return m.grid.CellsAvailable() || m.TileMatchesAvailable()
}

// TileMatchesAvailable reports whether a triple merge exists in any direction.
// Triples of symbolic tiles cannot be merged, so they do not count.
func (m *Manager) TileMatchesAvailable() bool {
	for _, direction := range Directions {
		vector, _ := direction.Vector()
		found := false
		m.grid.EachCell(func(x, y int, tile *Tile) {
			if found || tile == nil || !tile.Value.IsNumeric() {
				return
			}
			if match := tripleAheadMatch(m.grid, Position{X: x, Y: y}, vector, nil); match.ok {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// Handle dispatches one input event
func (m *Manager) Handle(in Input) error {
	switch in.Kind {
	case InputMove:
		_, err := m.Move(in.Direction)
		return err
	case InputRestart:
		m.Restart()
		return nil
	case InputKeepPlaying:
		m.KeepPlaying()
		return nil
	}
	return fmt.Errorf("unknown input kind %d", int(in.Kind))
}

// Run consumes inputs one at a time until the channel closes or ctx ends.
// Rejected inputs are logged and do not stop the loop.
func (m *Manager) Run(ctx context.Context, inputs <-chan Input) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			if err := m.Handle(in); err != nil {
				m.log.Warn().Err(err).Msg("input rejected")
			}
		}
	}
}

// Snapshot returns the board and the metadata an actuator would receive
func (m *Manager) Snapshot() (GridState, Metadata) {
	return m.grid.Serialize(), Metadata{
		Score:      m.score,
		Over:       m.over,
		Won:        m.won,
		BestScore:  m.scores.Get(),
		Terminated: m.IsGameTerminated(),
	}
}

// Score returns the current score
func (m *Manager) Score() int { return m.score }

// Over reports whether the game has been lost or run out of moves
func (m *Manager) Over() bool { return m.over }

// Won reports whether the winning tile has been produced
func (m *Manager) Won() bool { return m.won }

// Moves returns how many moves have been accepted this game
func (m *Manager) Moves() int { return m.moves }

// Size returns the board dimension
func (m *Manager) Size() int { return m.size }

// BestTile returns the largest numeric value on the board
func (m *Manager) BestTile() int {
	best := 0
	m.grid.EachCell(func(_, _ int, tile *Tile) {
		if tile == nil {
			return
		}
		if n, err := tile.Value.Int(); err == nil && n > best {
			best = n
		}
	})
	return best
}
