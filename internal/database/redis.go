package database

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
)

// RedisStore keeps values in Redis under a key prefix
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisStoreFromURL parses a redis:// URL and creates a store
func NewRedisStoreFromURL(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.ErrDatabaseOperation("parse_url", err)
	}
	return NewRedisStore(redis.NewClient(opts), prefix), nil
}

// Name identifies the backend in logs
func (s *RedisStore) Name() string { return "redis" }

// Ping checks connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.ErrDatabaseOperation("ping", err)
	}
	return nil
}

// Close releases the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		logger.Error("Failed to get key", logger.Fields{"error": err.Error(), "key": key})
		return "", false, errors.ErrDatabaseOperation("get", err)
	}
	return v, true, nil
}

// Set stores value under key without expiry
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		logger.Error("Failed to set key", logger.Fields{"error": err.Error(), "key": key})
		return errors.ErrDatabaseOperation("set", err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		logger.Error("Failed to delete key", logger.Fields{"error": err.Error(), "key": key})
		return errors.ErrDatabaseOperation("delete", err)
	}
	return nil
}

// Clear removes every key under the prefix
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.ErrDatabaseOperation("scan", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.ErrDatabaseOperation("clear", err)
	}
	return nil
}
