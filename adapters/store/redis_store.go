package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yukti-app/walletd/ports"
)

// RedisStore is a Redis implementation of the CredentialStore interface.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "walletd:credentials:",
	}
}

var _ ports.CredentialStore = (*RedisStore)(nil)

// GetItem retrieves a value by key. A missing key reads as "".
func (s *RedisStore) GetItem(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, nil
}

// SetItem stores a value under key. Credential records have no TTL: they live
// until an explicit disconnect or stale-token cleanup.
func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a key.
func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// MultiRemove deletes several keys in a single round trip.
func (s *RedisStore) MultiRemove(ctx context.Context, keys []string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete credential record: %w", err)
	}
	return nil
}
