package database

import (
	"errors"
	"fmt"
	"time"

	"triplemerge/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormDB wraps the GORM database connection and implements Database interface
type GormDB struct {
	db *gorm.DB
}

// Ensure GormDB implements Database interface
var _ Database = (*GormDB)(nil)

// NewGormDB creates a new GORM database connection
func NewGormDB(dsn string) (*GormDB, error) {
	// Route GORM's logger through zerolog
	gormWriter := log.With().Str("component", "gorm").Logger()
	gormLogger := logger.New(
		&gormWriter,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to PostgreSQL database with GORM")

	gormDB := &GormDB{db: db}

	// Auto-migrate the schema
	if err := gormDB.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return gormDB, nil
}

// AutoMigrate runs database migrations
func (g *GormDB) AutoMigrate() error {
	return g.db.AutoMigrate(
		&models.GormPlayer{},
		&models.GormGame{},
	)
}

// Close closes the database connection
func (g *GormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreatePlayer inserts a player or updates the name of an existing one
func (g *GormDB) CreatePlayer(player *models.Player) error {
	gormPlayer := &models.GormPlayer{}
	gormPlayer.FromPlayer(player)

	result := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(gormPlayer)
	if result.Error != nil {
		return fmt.Errorf("failed to create player: %w", result.Error)
	}

	*player = *gormPlayer.ToPlayer()
	return nil
}

// GetPlayer retrieves a player by ID
func (g *GormDB) GetPlayer(playerID string) (*models.Player, error) {
	var gormPlayer models.GormPlayer
	result := g.db.Where("id = ?", playerID).First(&gormPlayer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get player: %w", result.Error)
	}

	return gormPlayer.ToPlayer(), nil
}

// SaveGame stores a finished game
func (g *GormDB) SaveGame(record *models.GameRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	gormGame := &models.GormGame{}
	gormGame.FromGameRecord(record)

	result := g.db.Omit("Player").Create(gormGame)
	if result.Error != nil {
		return fmt.Errorf("failed to save game: %w", result.Error)
	}

	// Update the original record with the database values
	*record = *gormGame.ToGameRecord()
	return nil
}

// GetBestScore returns the player's highest recorded score, or 0
func (g *GormDB) GetBestScore(playerID string) (int, error) {
	var best int
	result := g.db.Model(&models.GormGame{}).
		Select("COALESCE(MAX(score), 0)").
		Where("player_id = ?", playerID).
		Scan(&best)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get best score: %w", result.Error)
	}
	return best, nil
}

// GetLeaderboard retrieves each player's best game in the period
func (g *GormDB) GetLeaderboard(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.GormLeaderboardEntry

	// Rank every game per player so only the best one survives
	subquery := g.db.Table("games g").
		Select("g.player_id, p.name AS player_name, g.score, g.best_tile, g.id AS game_id, g.created_at, " +
			"ROW_NUMBER() OVER (PARTITION BY g.player_id ORDER BY g.score DESC, g.created_at ASC) AS pick").
		Joins("JOIN players p ON p.id = g.player_id")

	switch leaderboardType {
	case models.LeaderboardDaily:
		subquery = subquery.Where("g.created_at >= CURRENT_DATE")
	case models.LeaderboardWeekly:
		subquery = subquery.Where("g.created_at >= DATE_TRUNC('week', CURRENT_DATE)")
	case models.LeaderboardMonthly:
		subquery = subquery.Where("g.created_at >= DATE_TRUNC('month', CURRENT_DATE)")
	case models.LeaderboardAll:
		// No additional filter for all-time leaderboard
	default:
		return nil, fmt.Errorf("invalid leaderboard type %q", leaderboardType)
	}

	result := g.db.Table("(?) AS best", subquery).
		Select("player_id, player_name, score, best_tile, game_id, created_at, " +
			"ROW_NUMBER() OVER (ORDER BY score DESC, created_at ASC) AS rank").
		Where("pick = 1").
		Order("score DESC, created_at ASC").
		Limit(limit).
		Scan(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", result.Error)
	}

	// Convert to regular LeaderboardEntry
	var leaderboardEntries []models.LeaderboardEntry
	for _, entry := range entries {
		leaderboardEntries = append(leaderboardEntries, *entry.ToLeaderboardEntry())
	}

	return leaderboardEntries, nil
}

// GetDB returns the underlying GORM database instance
func (g *GormDB) GetDB() *gorm.DB {
	return g.db
}
