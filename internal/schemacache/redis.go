package schemacache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"applyflow/internal/config"
	"applyflow/pkg/models"
)

// RedisStore persists schemas as JSON documents in Redis. Entries carry no
// expiration; a schema stays valid until explicitly cleared.
type RedisStore struct {
	client *redis.Client
}

// redisOptions resolves client options from the configured URL, with the
// explicit password and DB settings taking precedence over the URL
func redisOptions(cfg *config.Config) *redis.Options {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr: "localhost:6379",
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return opts
}

// NewRedisStore creates a Redis-backed schema store
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(redisOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get returns the cached schema for a site key
func (s *RedisStore) Get(ctx context.Context, siteKey string) (*models.FormSchema, bool, error) {
	data, err := s.client.Get(ctx, schemaKey(siteKey)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get schema from Redis: %w", err)
	}

	var schema models.FormSchema
	if err := json.Unmarshal([]byte(data), &schema); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached schema: %w", err)
	}

	return &schema, true, nil
}

// Put stores the schema for a site key without expiration
func (s *RedisStore) Put(ctx context.Context, siteKey string, schema *models.FormSchema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := s.client.Set(ctx, schemaKey(siteKey), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store schema in Redis: %w", err)
	}

	return nil
}

// Clear removes the entry for a site key
func (s *RedisStore) Clear(ctx context.Context, siteKey string) error {
	return s.client.Del(ctx, schemaKey(siteKey)).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// schemaKey generates the Redis key for a site's schema
func schemaKey(siteKey string) string {
	return fmt.Sprintf("formschema:site:%s", siteKey)
}
