package models

import (
	"time"

	"github.com/google/uuid"
)

// GormPlayer represents a player using GORM
type GormPlayer struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Games []GormGame `gorm:"foreignKey:PlayerID" json:"games,omitempty"`
}

// TableName specifies the table name for GormPlayer
func (GormPlayer) TableName() string {
	return "players"
}

// ToPlayer converts GormPlayer to Player
func (gp *GormPlayer) ToPlayer() *Player {
	return &Player{
		ID:        gp.ID,
		Name:      gp.Name,
		CreatedAt: gp.CreatedAt,
	}
}

// FromPlayer converts Player to GormPlayer
func (gp *GormPlayer) FromPlayer(p *Player) {
	gp.ID = p.ID
	gp.Name = p.Name
	gp.CreatedAt = p.CreatedAt
}

// GormGame represents a finished game using GORM
type GormGame struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlayerID  string    `gorm:"type:varchar(64);not null;index" json:"player_id"`
	Score     int       `gorm:"not null;default:0;index:idx_games_score" json:"score"`
	BestTile  int       `gorm:"not null;default:0" json:"best_tile"`
	Moves     int       `gorm:"not null;default:0" json:"moves"`
	BoardSize int       `gorm:"not null;default:4" json:"board_size"`
	Won       bool      `gorm:"not null;default:false" json:"won"`
	Over      bool      `gorm:"not null;default:false" json:"over"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_games_created_at" json:"created_at"`

	// Relationships
	Player GormPlayer `gorm:"foreignKey:PlayerID;references:ID" json:"player,omitempty"`
}

// TableName specifies the table name for GormGame
func (GormGame) TableName() string {
	return "games"
}

// ToGameRecord converts GormGame to GameRecord
func (gg *GormGame) ToGameRecord() *GameRecord {
	return &GameRecord{
		ID:        gg.ID,
		PlayerID:  gg.PlayerID,
		Score:     gg.Score,
		BestTile:  gg.BestTile,
		Moves:     gg.Moves,
		BoardSize: gg.BoardSize,
		Won:       gg.Won,
		Over:      gg.Over,
		CreatedAt: gg.CreatedAt,
	}
}

// FromGameRecord converts GameRecord to GormGame
func (gg *GormGame) FromGameRecord(r *GameRecord) {
	gg.ID = r.ID
	gg.PlayerID = r.PlayerID
	gg.Score = r.Score
	gg.BestTile = r.BestTile
	gg.Moves = r.Moves
	gg.BoardSize = r.BoardSize
	gg.Won = r.Won
	gg.Over = r.Over
	gg.CreatedAt = r.CreatedAt
}

// GormLeaderboardEntry is the scan target for leaderboard queries
type GormLeaderboardEntry struct {
	PlayerID   string    `gorm:"type:varchar(64);not null" json:"player_id"`
	PlayerName string    `gorm:"type:varchar(64);not null" json:"player_name"`
	Score      int       `gorm:"not null" json:"score"`
	BestTile   int       `gorm:"not null" json:"best_tile"`
	Rank       int       `gorm:"not null" json:"rank"`
	GameID     uuid.UUID `gorm:"type:uuid;not null" json:"game_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToLeaderboardEntry converts GormLeaderboardEntry to LeaderboardEntry
func (gle *GormLeaderboardEntry) ToLeaderboardEntry() *LeaderboardEntry {
	return &LeaderboardEntry{
		PlayerID:   gle.PlayerID,
		PlayerName: gle.PlayerName,
		Score:      gle.Score,
		BestTile:   gle.BestTile,
		Rank:       gle.Rank,
		GameID:     gle.GameID,
		CreatedAt:  gle.CreatedAt,
	}
}
