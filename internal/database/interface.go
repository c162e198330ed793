package database

import (
	"errors"
	"fmt"

	"triplemerge/internal/config"
	"triplemerge/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Database defines the interface for database operations
type Database interface {
	// Player operations
	CreatePlayer(player *models.Player) error
	GetPlayer(playerID string) (*models.Player, error)

	// Game operations
	SaveGame(record *models.GameRecord) error
	GetBestScore(playerID string) (int, error)

	// Leaderboard operations
	GetLeaderboard(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)

	// Connection management
	Close() error
}

// Open connects to the backend selected by cfg.Database.Driver
func Open(cfg *config.Config) (Database, error) {
	switch cfg.Database.Driver {
	case config.DriverGorm:
		return NewGormDB(cfg.GetDatabaseURL())
	case config.DriverPostgres:
		return NewPostgresDB(cfg.GetDatabaseURL())
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.Database.SQLitePath)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}
