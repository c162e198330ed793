package game

// Position is a cell coordinate on the board
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by a movement vector
func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Tile is a single numbered (or symbolic) piece on the board
type Tile struct {
	Position

	Value Value

	// PreviousPosition is where the tile stood before the current move
	PreviousPosition *Position

	// MergedFrom holds the three tiles combined into this one during the
	// current move, ordered farthest first
	MergedFrom []*Tile
}

// NewTile creates a tile at the given position
func NewTile(pos Position, value Value) *Tile {
	return &Tile{
		Position: pos,
		Value:    value,
	}
}

// SavePosition snapshots the current position as the previous position
func (t *Tile) SavePosition() {
	prev := t.Position
	t.PreviousPosition = &prev
}

// UpdatePosition moves the tile's recorded position
func (t *Tile) UpdatePosition(pos Position) {
	t.Position = pos
}

// clone deep-copies the tile, including merge provenance
func (t *Tile) clone() *Tile {
	c := &Tile{Position: t.Position, Value: t.Value}
	if t.PreviousPosition != nil {
		prev := *t.PreviousPosition
		c.PreviousPosition = &prev
	}
	if t.MergedFrom != nil {
		c.MergedFrom = make([]*Tile, len(t.MergedFrom))
		for i, src := range t.MergedFrom {
			c.MergedFrom[i] = src.clone()
		}
	}
	return c
}

// TileState is the serializable, read-only view of a tile handed to actuators
type TileState struct {
	Position         Position    `json:"position"`
	Value            Value       `json:"value"`
	PreviousPosition *Position   `json:"previous_position,omitempty"`
	MergedFrom       []TileState `json:"merged_from,omitempty"`
}

// Serialize returns the tile's read-only view
func (t *Tile) Serialize() TileState {
	state := TileState{Position: t.Position, Value: t.Value}
	if t.PreviousPosition != nil {
		prev := *t.PreviousPosition
		state.PreviousPosition = &prev
	}
	for _, src := range t.MergedFrom {
		state.MergedFrom = append(state.MergedFrom, src.Serialize())
	}
	return state
}
