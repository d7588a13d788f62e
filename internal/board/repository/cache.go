package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
)

// CacheKey is the single fixed key holding the serialized board. The version
// suffix tracks the document schema generation the cache was introduced under.
const CacheKey = "jobhunt:board:cache:v4"

// Cache is the local cache store: one serialized board under one fixed key,
// read once at startup and rewritten on every change.
type Cache interface {
	Load(ctx context.Context) (board.Board, error)
	Save(ctx context.Context, b board.Board) error
}

// RedisCache implements Cache on a Redis string. The key never expires.
type RedisCache struct {
	client *redis.Client
	key    string
}

// NewRedisCache creates a cache store. Key may be empty to use CacheKey.
func NewRedisCache(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = CacheKey
	}
	return &RedisCache{client: client, key: key}
}

// Load reads and migrates the cached board. An absent key, a read error or a
// corrupt payload all degrade to the migrated empty document; Load never fails
// in a way the caller must handle beyond logging.
func (c *RedisCache) Load(ctx context.Context) (board.Board, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return board.Migrate(nil), nil
		}
		return board.Migrate(nil), err
	}
	return board.MigrateJSON(data), nil
}

// Save overwrites the cached board.
func (c *RedisCache) Save(ctx context.Context, b board.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, 0).Err()
}
