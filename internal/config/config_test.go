package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Game.BoardSize)
	assert.Equal(t, 1, cfg.Game.StartTiles)
	assert.Equal(t, DriverGorm, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, "0.0.0.0:6060", cfg.GetServerAddress())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOARD_SIZE", "5")
	t.Setenv("START_TILES", "3")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/scores.db")
	t.Setenv("LEADERBOARD_CACHE_TTL", "90s")
	t.Setenv("SUPPORTED_LANGUAGES", "en, zh-CN")
	t.Setenv("REDIS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Game.BoardSize)
	assert.Equal(t, 3, cfg.Game.StartTiles)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/scores.db", cfg.Database.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, []string{"en", "zh-CN"}, cfg.I18n.SupportedLanguages)
	assert.False(t, cfg.Redis.Enabled)
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("BOARD_SIZE", "four")
	t.Setenv("TOKEN_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Game.BoardSize)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:    DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"},
			Auth:        AuthConfig{JWTSecret: "s3cret"},
			Game:        GameConfig{BoardSize: 4, StartTiles: 1},
			Leaderboard: LeaderboardConfig{MaxEntries: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"board too small", func(c *Config) { c.Game.BoardSize = 2 }, false},
		{"no start tiles", func(c *Config) { c.Game.StartTiles = 0 }, false},
		{"start tiles fill board", func(c *Config) { c.Game.StartTiles = 16 }, true},
		{"start tiles overflow board", func(c *Config) { c.Game.StartTiles = 17 }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"postgres without host", func(c *Config) { c.Database.Driver = DriverPostgres }, false},
		{"sqlite without path", func(c *Config) { c.Database.SQLitePath = "" }, false},
		{"no leaderboard entries", func(c *Config) { c.Leaderboard.MaxEntries = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateServerRejectsDefaultSecret(t *testing.T) {
	c := &Config{
		Database:    DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"},
		Auth:        AuthConfig{JWTSecret: defaultJWTSecret},
		Game:        GameConfig{BoardSize: 4, StartTiles: 1},
		Leaderboard: LeaderboardConfig{MaxEntries: 10},
	}
	assert.True(t, errors.Is(c.ValidateServer(), ErrInsecureJWTSecret))

	c.Auth.JWTSecret = ""
	assert.ErrorIs(t, c.ValidateServer(), ErrInsecureJWTSecret)

	c.Auth.JWTSecret = "change-me-for-real"
	assert.NoError(t, c.ValidateServer())
}
