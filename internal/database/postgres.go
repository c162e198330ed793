package database

import (
	"database/sql"
	"fmt"
	"time"

	"triplemerge/pkg/models"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var postgresDialect = dialect{
	name: "postgres",
	bind: dollarNumbers,
	periods: map[models.LeaderboardType]string{
		models.LeaderboardDaily:   ` AND g.created_at >= CURRENT_DATE`,
		models.LeaderboardWeekly:  ` AND g.created_at >= DATE_TRUNC('week', CURRENT_DATE)`,
		models.LeaderboardMonthly: ` AND g.created_at >= DATE_TRUNC('month', CURRENT_DATE)`,
		models.LeaderboardAll:     ``,
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS players (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL REFERENCES players(id),
			score INTEGER NOT NULL DEFAULT 0,
			best_tile INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			board_size INTEGER NOT NULL DEFAULT 4,
			won BOOLEAN NOT NULL DEFAULT FALSE,
			over BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_score ON games (score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_games_player ON games (player_id)`,
	},
	timeLayouts: []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07"},
}

// PostgresDB wraps the database connection and implements Database interface
type PostgresDB struct {
	sqlDB
}

// Ensure PostgresDB implements Database interface
var _ Database = (*PostgresDB)(nil)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(dsn string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Msg("Successfully connected to PostgreSQL database")

	p := &PostgresDB{sqlDB{db: db, dialect: postgresDialect}}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}
