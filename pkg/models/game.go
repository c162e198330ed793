package models

import (
	"time"

	"triplemerge/internal/game"

	"github.com/google/uuid"
)

// GameRecord is a finished game kept for best scores and leaderboards
type GameRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	Score     int       `json:"score" db:"score"`
	BestTile  int       `json:"best_tile" db:"best_tile"`
	Moves     int       `json:"moves" db:"moves"`
	BoardSize int       `json:"board_size" db:"board_size"`
	Won       bool      `json:"won" db:"won"`
	Over      bool      `json:"over" db:"over"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Player is an anonymous player identified by a server-issued ID
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardEntry represents an entry in the leaderboard
type LeaderboardEntry struct {
	PlayerID   string    `json:"player_id" db:"player_id"`
	PlayerName string    `json:"player_name" db:"player_name"`
	Score      int       `json:"score" db:"score"`
	BestTile   int       `json:"best_tile" db:"best_tile"`
	Rank       int       `json:"rank" db:"rank"`
	GameID     uuid.UUID `json:"game_id" db:"game_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardType represents different types of leaderboards
type LeaderboardType string

const (
	LeaderboardDaily   LeaderboardType = "daily"
	LeaderboardWeekly  LeaderboardType = "weekly"
	LeaderboardMonthly LeaderboardType = "monthly"
	LeaderboardAll     LeaderboardType = "all"
)

// LeaderboardTypes lists every leaderboard period
var LeaderboardTypes = []LeaderboardType{
	LeaderboardDaily,
	LeaderboardWeekly,
	LeaderboardMonthly,
	LeaderboardAll,
}

// Valid reports whether t names a known leaderboard
func (t LeaderboardType) Valid() bool {
	for _, known := range LeaderboardTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Message types exchanged over the websocket
const (
	MessageMove              = "move"
	MessageRestart           = "restart"
	MessageKeepPlaying       = "keep_playing"
	MessageGetLeaderboard    = "get_leaderboard"
	MessageGameState         = "game_state"
	MessageContinue          = "continue"
	MessageLeaderboard       = "leaderboard"
	MessageLeaderboardUpdate = "leaderboard_update"
	MessageError             = "error"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MoveRequest represents a move request from the client.
// Direction is either a name ("up") or a code (0-3).
type MoveRequest struct {
	Direction interface{} `json:"direction"`
}

// LeaderboardRequest represents a leaderboard request
type LeaderboardRequest struct {
	Type  LeaderboardType `json:"type"`
	Limit int             `json:"limit,omitempty"`
}

// GameResponse is one actuation as sent to the client
type GameResponse struct {
	Grid       game.GridState `json:"grid"`
	Score      int            `json:"score"`
	Over       bool           `json:"over"`
	Won        bool           `json:"won"`
	BestScore  int            `json:"best_score"`
	Terminated bool           `json:"terminated"`
	Message    string         `json:"message,omitempty"`
}

// NewGameResponse builds a response from an actuation
func NewGameResponse(grid game.GridState, meta game.Metadata) GameResponse {
	return GameResponse{
		Grid:       grid,
		Score:      meta.Score,
		Over:       meta.Over,
		Won:        meta.Won,
		BestScore:  meta.BestScore,
		Terminated: meta.Terminated,
	}
}

// LeaderboardResponse represents the leaderboard response
type LeaderboardResponse struct {
	Type     LeaderboardType    `json:"type"`
	Rankings []LeaderboardEntry `json:"rankings"`
}

// SessionResponse is returned when a player session is issued
type SessionResponse struct {
	Player Player `json:"player"`
	Token  string `json:"token"`
}

// BestScoreResponse reports a player's best score
type BestScoreResponse struct {
	PlayerID  string `json:"player_id"`
	BestScore int    `json:"best_score"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
