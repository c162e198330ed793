package game

import "errors"

// ErrGridFull is returned when an empty cell is requested from a full grid
var ErrGridFull = errors.New("grid has no available cells")

// RandomSource is the subset of *rand.Rand the engine draws from
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// Grid is a square board of optional tiles, indexed cells[x][y]
type Grid struct {
	size  int
	cells [][]*Tile
}

// NewGrid creates an empty grid of the given size; size must not be negative
func NewGrid(size int) *Grid {
	cells := make([][]*Tile, size)
	for x := range cells {
		cells[x] = make([]*Tile, size)
	}
	return &Grid{size: size, cells: cells}
}

// Size returns the board dimension
func (g *Grid) Size() int {
	return g.size
}

// RandomAvailableCell picks a uniformly random empty cell
func (g *Grid) RandomAvailableCell(rng RandomSource) (Position, error) {
	cells := g.AvailableCells()
	if len(cells) == 0 {
		return Position{}, ErrGridFull
	}
	return cells[rng.Intn(len(cells))], nil
}

// AvailableCells lists empty cells in EachCell order
func (g *Grid) AvailableCells() []Position {
	var cells []Position
	g.EachCell(func(x, y int, tile *Tile) {
		if tile == nil {
			cells = append(cells, Position{X: x, Y: y})
		}
	})
	return cells
}

// EachCell visits every cell, x outer and y inner
func (g *Grid) EachCell(visit func(x, y int, tile *Tile)) {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			visit(x, y, g.cells[x][y])
		}
	}
}

// CellsAvailable reports whether any cell is empty
func (g *Grid) CellsAvailable() bool {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			if g.cells[x][y] == nil {
				return true
			}
		}
	}
	return false
}

// CellAvailable reports whether the cell is on the board and empty
func (g *Grid) CellAvailable(pos Position) bool {
	return g.WithinBounds(pos) && g.cells[pos.X][pos.Y] == nil
}

// CellOccupied reports whether the cell holds a tile
func (g *Grid) CellOccupied(pos Position) bool {
	return g.CellContent(pos) != nil
}

// CellContent returns the tile at pos, or nil when empty or off the board
func (g *Grid) CellContent(pos Position) *Tile {
	if !g.WithinBounds(pos) {
		return nil
	}
	return g.cells[pos.X][pos.Y]
}

// InsertTile places the tile at its own position
func (g *Grid) InsertTile(tile *Tile) {
	g.cells[tile.X][tile.Y] = tile
}

// RemoveTile clears the tile's current position
func (g *Grid) RemoveTile(tile *Tile) {
	g.cells[tile.X][tile.Y] = nil
}

// WithinBounds reports whether pos lies on the board
func (g *Grid) WithinBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.size &&
		pos.Y >= 0 && pos.Y < g.size
}

// Occupied counts the tiles on the board
func (g *Grid) Occupied() int {
	n := 0
	g.EachCell(func(_, _ int, tile *Tile) {
		if tile != nil {
			n++
		}
	})
	return n
}

// Clone deep-copies the grid and every tile on it
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.size)
	g.EachCell(func(x, y int, tile *Tile) {
		if tile != nil {
			c.cells[x][y] = tile.clone()
		}
	})
	return c
}

// GridState is a read-only snapshot of the board, indexed Cells[x][y]
type GridState struct {
	Size  int            `json:"size"`
	Cells [][]*TileState `json:"cells"`
}

// Serialize snapshots the board for actuators
func (g *Grid) Serialize() GridState {
	cells := make([][]*TileState, g.size)
	for x := range cells {
		cells[x] = make([]*TileState, g.size)
		for y := range cells[x] {
			if tile := g.cells[x][y]; tile != nil {
				state := tile.Serialize()
				cells[x][y] = &state
			}
		}
	}
	return GridState{Size: g.size, Cells: cells}
}

// Tile returns the snapshot tile at (x, y), or nil
func (s GridState) Tile(x, y int) *TileState {
	if x < 0 || x >= s.Size || y < 0 || y >= s.Size {
		return nil
	}
	return s.Cells[x][y]
}
