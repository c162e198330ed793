package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"triplemerge/pkg/models"

	"github.com/google/uuid"
)

// dialect captures the few places Postgres and SQLite SQL differ
type dialect struct {
	name string

	// bind rewrites ? placeholders into the driver's style
	bind func(query string) string

	// periods filters games to a leaderboard window
	periods map[models.LeaderboardType]string

	schema []string

	// timeLayouts parses timestamps the driver hands back as text
	timeLayouts []string
}

// sqlDB implements Database over database/sql for a given dialect
type sqlDB struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlDB) migrate() error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply %s schema: %w", s.dialect.name, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *sqlDB) Close() error {
	return s.db.Close()
}

// CreatePlayer inserts a player or updates the name of an existing one
func (s *sqlDB) CreatePlayer(player *models.Player) error {
	query := s.dialect.bind(`
		INSERT INTO players (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name`)

	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.Exec(query, player.ID, player.Name, player.CreatedAt); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by ID
func (s *sqlDB) GetPlayer(playerID string) (*models.Player, error) {
	query := s.dialect.bind(`SELECT id, name, created_at FROM players WHERE id = ?`)

	var player models.Player
	createdAt := s.timestamp(&player.CreatedAt)
	err := s.db.QueryRow(query, playerID).Scan(&player.ID, &player.Name, createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &player, nil
}

// SaveGame stores a finished game
func (s *sqlDB) SaveGame(record *models.GameRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := s.dialect.bind(`
		INSERT INTO games (id, player_id, score, best_tile, moves, board_size, won, over, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.Exec(query, record.ID, record.PlayerID, record.Score, record.BestTile,
		record.Moves, record.BoardSize, record.Won, record.Over, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// GetBestScore returns the player's highest recorded score, or 0
func (s *sqlDB) GetBestScore(playerID string) (int, error) {
	query := s.dialect.bind(`SELECT COALESCE(MAX(score), 0) FROM games WHERE player_id = ?`)

	var best int
	if err := s.db.QueryRow(query, playerID).Scan(&best); err != nil {
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

// GetLeaderboard returns each player's best game in the period, highest first
func (s *sqlDB) GetLeaderboard(leaderboardType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	filter, ok := s.dialect.periods[leaderboardType]
	if !ok {
		return nil, fmt.Errorf("invalid leaderboard type %q", leaderboardType)
	}

	query := s.dialect.bind(leaderboardQuery(filter))
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		err := rows.Scan(
			&entry.PlayerID, &entry.PlayerName, &entry.Score,
			&entry.BestTile, &entry.GameID, s.timestamp(&entry.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}

	return entries, nil
}

// timestamp scans either a native time or its text encoding into dst
type timestamp struct {
	dst     *time.Time
	layouts []string
}

func (s *sqlDB) timestamp(dst *time.Time) *timestamp {
	return &timestamp{dst: dst, layouts: s.dialect.timeLayouts}
}

// Scan implements sql.Scanner
func (ts *timestamp) Scan(src interface{}) error {
	var text string
	switch v := src.(type) {
	case time.Time:
		*ts.dst = v
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case nil:
		*ts.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}

	for _, layout := range ts.layouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			*ts.dst = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", text)
}

// leaderboardQuery picks each player's best game; filter restricts the period
func leaderboardQuery(filter string) string {
	var b strings.Builder
	b.WriteString(`
		SELECT player_id, player_name, score, best_tile, game_id, created_at
		FROM (
			SELECT
				g.player_id,
				p.name AS player_name,
				g.score,
				g.best_tile,
				g.id AS game_id,
				g.created_at,
				ROW_NUMBER() OVER (PARTITION BY g.player_id ORDER BY g.score DESC, g.created_at ASC) AS pick
			FROM games g
			JOIN players p ON p.id = g.player_id
			WHERE 1 = 1`)
	b.WriteString(filter)
	b.WriteString(`
		) best
		WHERE pick = 1
		ORDER BY score DESC, created_at ASC
		LIMIT ?`)
	return b.String()
}

// questionMarks leaves ? placeholders untouched
func questionMarks(query string) string {
	return query
}

// dollarNumbers rewrites ? placeholders as $1, $2, ...
func dollarNumbers(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
