package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"triplemerge/internal/config"
	"triplemerge/pkg/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrCacheMiss is returned when a key is not cached
var ErrCacheMiss = errors.New("key not found")

// Cache interface defines caching operations
type Cache interface {
	// Leaderboard caching
	SetLeaderboard(leaderboardType models.LeaderboardType, entries []models.LeaderboardEntry, expiration time.Duration) error
	GetLeaderboard(leaderboardType models.LeaderboardType) ([]models.LeaderboardEntry, error)
	InvalidateLeaderboard(leaderboardType models.LeaderboardType) error

	// Best scores
	GetBestScore(playerID string) (int, error)
	RaiseBestScore(playerID string, score int) (int, error)

	// Token revocation
	RevokeToken(tokenID string, expiration time.Duration) error
	IsTokenRevoked(tokenID string) bool

	// Generic operations
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	Exists(key string) bool
	Close() error
}

// InvalidateLeaderboards drops every cached leaderboard period
func InvalidateLeaderboards(c Cache) error {
	var errs []error
	for _, t := range models.LeaderboardTypes {
		if err := c.InvalidateLeaderboard(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func leaderboardKey(leaderboardType models.LeaderboardType) string {
	return fmt.Sprintf("leaderboard:%s", string(leaderboardType))
}

func bestScoreKey(playerID string) string {
	return fmt.Sprintf("best:%s", playerID)
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("jwt:revoked:%s", tokenID)
}

// RedisCache implements caching using Redis
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// Ensure RedisCache implements Cache interface
var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	// Create Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", cfg.GetRedisAddr()).Msg("Successfully connected to Redis")

	return &RedisCache{
		client: rdb,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Set stores a value in Redis
func (r *RedisCache) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return r.client.Set(r.ctx, key, data, expiration).Err()
}

// Get retrieves a value from Redis
func (r *RedisCache) Get(key string, dest interface{}) error {
	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get value: %w", err)
	}

	return json.Unmarshal([]byte(data), dest)
}

// Delete removes a key from Redis
func (r *RedisCache) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Exists checks if a key exists in Redis
func (r *RedisCache) Exists(key string) bool {
	result, err := r.client.Exists(r.ctx, key).Result()
	if err != nil {
		return false
	}
	return result > 0
}

// SetLeaderboard caches leaderboard entries
func (r *RedisCache) SetLeaderboard(leaderboardType models.LeaderboardType, entries []models.LeaderboardEntry, expiration time.Duration) error {
	return r.Set(leaderboardKey(leaderboardType), entries, expiration)
}

// GetLeaderboard retrieves cached leaderboard entries
func (r *RedisCache) GetLeaderboard(leaderboardType models.LeaderboardType) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.Get(leaderboardKey(leaderboardType), &entries)
	return entries, err
}

// InvalidateLeaderboard removes cached leaderboard
func (r *RedisCache) InvalidateLeaderboard(leaderboardType models.LeaderboardType) error {
	return r.Delete(leaderboardKey(leaderboardType))
}

// GetBestScore returns the cached best score for a player
func (r *RedisCache) GetBestScore(playerID string) (int, error) {
	best, err := r.client.Get(r.ctx, bestScoreKey(playerID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("failed to get best score: %w", err)
	}
	return best, nil
}

// raiseScript atomically keeps the larger of the stored and offered score
var raiseScript = redis.NewScript(`
	local current = tonumber(redis.call("get", KEYS[1]) or "0")
	local offered = tonumber(ARGV[1])
	if offered > current then
		redis.call("set", KEYS[1], ARGV[1])
		return offered
	end
	return current
`)

// RaiseBestScore stores score if it beats the cached best and returns the best
func (r *RedisCache) RaiseBestScore(playerID string, score int) (int, error) {
	best, err := raiseScript.Run(r.ctx, r.client, []string{bestScoreKey(playerID)}, strconv.Itoa(score)).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to raise best score: %w", err)
	}
	return best, nil
}

// RevokeToken marks a token ID as revoked until it would have expired anyway
func (r *RedisCache) RevokeToken(tokenID string, expiration time.Duration) error {
	return r.client.Set(r.ctx, revokedKey(tokenID), "revoked", expiration).Err()
}

// IsTokenRevoked checks if a token ID has been revoked
func (r *RedisCache) IsTokenRevoked(tokenID string) bool {
	return r.Exists(revokedKey(tokenID))
}
