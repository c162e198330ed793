package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"triplemerge/pkg/models"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var sqliteDialect = dialect{
	name: "sqlite",
	bind: questionMarks,
	periods: map[models.LeaderboardType]string{
		models.LeaderboardDaily:   ` AND g.created_at >= date('now')`,
		models.LeaderboardWeekly:  ` AND g.created_at >= date('now', 'weekday 1', '-7 days')`,
		models.LeaderboardMonthly: ` AND g.created_at >= date('now', 'start of month')`,
		models.LeaderboardAll:     ``,
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL REFERENCES players(id),
			score INTEGER NOT NULL DEFAULT 0,
			best_tile INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			board_size INTEGER NOT NULL DEFAULT 4,
			won BOOLEAN NOT NULL DEFAULT 0,
			over BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_score ON games (score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_games_player ON games (player_id)`,
	},
	timeLayouts: sqlite3.SQLiteTimestampFormats,
}

// SQLiteDB stores players and games in a local SQLite file
type SQLiteDB struct {
	sqlDB
}

var _ Database = (*SQLiteDB)(nil)

// NewSQLiteDB opens (and creates if missing) a SQLite database file
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	// Ensure directory exists for ./data/scores.db, etc.
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{sqlDB{db: db, dialect: sqliteDialect}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("path", path).Msg("opened SQLite database")
	return s, nil
}
