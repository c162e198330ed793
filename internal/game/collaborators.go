package game

import (
	"errors"
	"fmt"
)

// ErrInvalidDirection is returned for direction codes outside 0..3
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is an abstract move direction
type Direction int

const (
	DirectionUp Direction = iota
	DirectionRight
	DirectionDown
	DirectionLeft
)

// Directions lists every direction in code order
var Directions = []Direction{DirectionUp, DirectionRight, DirectionDown, DirectionLeft}

// Vector is a unit movement on the board
type Vector struct {
	X int
	Y int
}

var vectors = map[Direction]Vector{
	DirectionUp:    {X: 0, Y: -1},
	DirectionRight: {X: 1, Y: 0},
	DirectionDown:  {X: 0, Y: 1},
	DirectionLeft:  {X: -1, Y: 0},
}

// Vector returns the unit vector for the direction
func (d Direction) Vector() (Vector, error) {
	v, ok := vectors[d]
	if !ok {
		return Vector{}, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return v, nil
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionRight:
		return "right"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection maps a direction name to its code
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirectionUp, nil
	case "right":
		return DirectionRight, nil
	case "down":
		return DirectionDown, nil
	case "left":
		return DirectionLeft, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// InputKind identifies what an input source asks the manager to do
type InputKind int

const (
	InputMove InputKind = iota
	InputRestart
	InputKeepPlaying
)

// Input is a single event from an input source
type Input struct {
	Kind      InputKind
	Direction Direction
}

// MoveInput builds a move event
func MoveInput(d Direction) Input {
	return Input{Kind: InputMove, Direction: d}
}

// Metadata accompanies every actuation
type Metadata struct {
	Score      int  `json:"score"`
	Over       bool `json:"over"`
	Won        bool `json:"won"`
	BestScore  int  `json:"best_score"`
	Terminated bool `json:"terminated"`
}

// Actuator presents game state. It receives a snapshot and never sees the live grid.
type Actuator interface {
	Actuate(grid GridState, meta Metadata)
	// Continue clears any won/over presentation
	Continue()
}

// ScoreStore keeps the best score across games
type ScoreStore interface {
	Get() int
	Set(score int)
}

// MemoryScoreStore is a process-local ScoreStore
type MemoryScoreStore struct {
	best int
}

func (m *MemoryScoreStore) Get() int { return m.best }

func (m *MemoryScoreStore) Set(score int) { m.best = score }

// NopActuator discards every actuation
type NopActuator struct{}

func (NopActuator) Actuate(GridState, Metadata) {}

func (NopActuator) Continue() {}
