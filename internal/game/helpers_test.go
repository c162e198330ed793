package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// stubRand always picks the first available cell and the most common spawn value
type stubRand struct{}

func (stubRand) Intn(int) int     { return 0 }
func (stubRand) Float64() float64 { return 0 }

type actuation struct {
	grid GridState
	meta Metadata
}

type recordingActuator struct {
	actuations []actuation
	continues  int
}

func (r *recordingActuator) Actuate(grid GridState, meta Metadata) {
	r.actuations = append(r.actuations, actuation{grid: grid, meta: meta})
}

func (r *recordingActuator) Continue() {
	r.continues++
}

func (r *recordingActuator) last(t *testing.T) actuation {
	t.Helper()
	require.NotEmpty(t, r.actuations, "expected at least one actuation")
	return r.actuations[len(r.actuations)-1]
}

// newTestManager returns an empty-board manager with deterministic spawning
func newTestManager(t *testing.T, size int) (*Manager, *recordingActuator, *MemoryScoreStore) {
	t.Helper()
	act := &recordingActuator{}
	store := &MemoryScoreStore{}
	m := NewManager(size, act, store, WithRand(stubRand{}), WithStartTiles(0))
	require.Equal(t, 0, m.grid.Occupied())
	return m, act, store
}

func place(m *Manager, x, y int, v Value) *Tile {
	tile := NewTile(Position{X: x, Y: y}, v)
	m.grid.InsertTile(tile)
	return tile
}

func valueAt(t *testing.T, m *Manager, x, y int) Value {
	t.Helper()
	tile := m.grid.CellContent(Position{X: x, Y: y})
	require.NotNil(t, tile, "expected a tile at (%d,%d)", x, y)
	return tile.Value
}

// occupancy maps every occupied cell to its value
func occupancy(g *Grid) map[Position]Value {
	out := make(map[Position]Value)
	g.EachCell(func(x, y int, tile *Tile) {
		if tile != nil {
			out[Position{X: x, Y: y}] = tile.Value
		}
	})
	return out
}
