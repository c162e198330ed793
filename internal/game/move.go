package game

// traversals holds the cell visiting order for one move
type traversals struct {
	x []int
	y []int
}

// buildTraversals orders both axes so the cell farthest in the direction of
// travel is visited first
func buildTraversals(size int, vector Vector) traversals {
	t := traversals{x: make([]int, size), y: make([]int, size)}
	for pos := 0; pos < size; pos++ {
		t.x[pos] = pos
		t.y[pos] = pos
	}

	if vector.X == 1 {
		reverse(t.x)
	}
	if vector.Y == 1 {
		reverse(t.y)
	}
	return t
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// findFarthestPosition walks from cell along vector while cells are empty.
// farthest is the last empty cell reached (or cell itself); next is the
// first blocked cell, which may be off the board.
func findFarthestPosition(grid *Grid, cell Position, vector Vector) (farthest, next Position) {
	for {
		farthest = cell
		cell = farthest.Add(vector)
		if !grid.CellAvailable(cell) {
			return farthest, cell
		}
	}
}

// tripleMatch is the result of looking two tiles ahead of an origin tile
type tripleMatch struct {
	// farthest is where the origin tile slides when no merge happens
	farthest Position

	origin *Tile
	near   *Tile
	far    *Tile

	// target is the far tile's cell, where a merged tile lands
	target Position

	ok bool
}

// tripleAheadMatch checks whether the tile at cell, the first tile ahead of
// it and the first tile ahead of that form a mergeable triple. fresh holds
// tiles created by merges earlier in the same pass; such a tile may not be
// the middle of a triple. It never mutates the grid.
func tripleAheadMatch(grid *Grid, cell Position, vector Vector, fresh map[*Tile]bool) tripleMatch {
	match := tripleMatch{origin: grid.CellContent(cell)}

	var next Position
	match.farthest, next = findFarthestPosition(grid, cell, vector)
	match.near = grid.CellContent(next)
	if match.origin == nil || match.near == nil {
		return match
	}

	_, next2 := findFarthestPosition(grid, next, vector)
	match.far = grid.CellContent(next2)
	match.target = next2

	match.ok = match.far != nil &&
		match.near.Value == match.origin.Value &&
		match.far.Value == match.origin.Value &&
		!fresh[match.near] &&
		match.near != match.far
	return match
}

// moveResult summarizes one resolved pass
type moveResult struct {
	moved  bool
	score  int
	won    bool
	over   bool
	merges int
}

// prepareTiles clears merge provenance and snapshots positions
func prepareTiles(grid *Grid) {
	grid.EachCell(func(_, _ int, tile *Tile) {
		if tile != nil {
			tile.MergedFrom = nil
			tile.SavePosition()
		}
	})
}

// moveTile relocates a tile on the grid
func moveTile(grid *Grid, tile *Tile, cell Position) {
	grid.RemoveTile(tile)
	tile.UpdatePosition(cell)
	grid.InsertTile(tile)
}

// resolveMove applies one move to grid in place. The grid is left partially
// moved when an error is returned; callers resolve on a copy.
func resolveMove(grid *Grid, vector Vector) (moveResult, error) {
	var result moveResult

	// Per-pass scratch: tiles consumed as merge inputs and tiles created by merges
	consumed := make(map[*Tile]bool)
	fresh := make(map[*Tile]bool)

	prepareTiles(grid)

	order := buildTraversals(grid.Size(), vector)
	for _, x := range order.x {
		for _, y := range order.y {
			cell := Position{X: x, Y: y}
			tile := grid.CellContent(cell)
			if tile == nil {
				continue
			}
			if consumed[tile] {
				grid.RemoveTile(tile)
				continue
			}

			match := tripleAheadMatch(grid, cell, vector, fresh)
			if match.ok {
				value, err := tile.Value.Triple()
				if err != nil {
					return result, err
				}
				n, _ := value.Int()

				merged := NewTile(match.target, value)
				merged.MergedFrom = []*Tile{match.far, match.near, tile}
				for _, src := range merged.MergedFrom {
					consumed[src] = true
					grid.RemoveTile(src)
				}
				grid.InsertTile(merged)
				fresh[merged] = true

				// Converge the sources on the merge cell for animation
				tile.UpdatePosition(match.target)
				match.near.UpdatePosition(match.target)

				// Negative merges still resolve but never lower the score
				if n > 0 {
					result.score += n
				}
				result.merges++

				if n == WinningValue {
					result.won = true
				}
				if losingValues[n] {
					result.over = true
				}
			} else {
				moveTile(grid, tile, match.farthest)
			}

			if tile.Position != cell {
				result.moved = true
			}
		}
	}

	return result, nil
}
