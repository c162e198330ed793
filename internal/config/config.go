package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
	DriverSQLite   = "sqlite"
)

const defaultJWTSecret = "your-super-secret-jwt-key"

// ErrInsecureJWTSecret is returned when the server runs with the default secret
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a secure value")

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Game        GameConfig
	Leaderboard LeaderboardConfig
	I18n        I18nConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host              string
	Port              string
	GinMode           string
	EnableHealthCheck bool
	CORSOrigins       []string
	LogLevel          string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	SQLitePath string
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds player token configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// GameConfig holds game-related configuration
type GameConfig struct {
	BoardSize  int
	StartTiles int
}

// LeaderboardConfig holds leaderboard-related configuration
type LeaderboardConfig struct {
	CacheTTL   time.Duration
	MaxEntries int
}

// I18nConfig holds internationalization configuration
type I18nConfig struct {
	DefaultLanguage    string
	SupportedLanguages []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envPaths := []string{
		".env",       // Current directory
		"../.env",    // Parent directory
		"../../.env", // Two levels up (for cmd/<name>)
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Debug().Str("path", path).Msg("loaded environment variables")
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Debug().Msg("no .env file found, using environment variables and defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Host:              getEnv("SERVER_HOST", "0.0.0.0"),
			Port:              getEnv("SERVER_PORT", "6060"),
			GinMode:           getEnv("GIN_MODE", "release"),
			EnableHealthCheck: getEnvBool("ENABLE_HEALTH_CHECK", true),
			CORSOrigins:       getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:6060"}),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", DriverGorm),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			Name:       getEnv("DB_NAME", "triplemerge"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/triplemerge.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		},
		Game: GameConfig{
			BoardSize:  getEnvInt("BOARD_SIZE", 4),
			StartTiles: getEnvInt("START_TILES", 1),
		},
		Leaderboard: LeaderboardConfig{
			CacheTTL:   getEnvDuration("LEADERBOARD_CACHE_TTL", 5*time.Minute),
			MaxEntries: getEnvInt("MAX_LEADERBOARD_ENTRIES", 100),
		},
		I18n: I18nConfig{
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
			SupportedLanguages: getEnvSlice("SUPPORTED_LANGUAGES", []string{"en", "zh-CN"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration shared by every command
func (c *Config) Validate() error {
	if c.Game.BoardSize < 3 {
		return fmt.Errorf("board size must be at least 3, got %d", c.Game.BoardSize)
	}

	cells := c.Game.BoardSize * c.Game.BoardSize
	if c.Game.StartTiles < 1 || c.Game.StartTiles > cells {
		return fmt.Errorf("start tiles must be between 1 and %d, got %d", cells, c.Game.StartTiles)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverGorm:
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration is incomplete")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Leaderboard.MaxEntries <= 0 {
		return fmt.Errorf("max leaderboard entries must be positive")
	}

	return nil
}

// ValidateServer adds the checks only the network server needs
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret {
		return ErrInsecureJWTSecret
	}
	return c.Validate()
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// GetRedisAddr returns the Redis host:port address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
