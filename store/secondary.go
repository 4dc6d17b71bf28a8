package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore is the secondary durable store holding finalized profiles.
type SnapshotStore interface {
	SetValue(ctx context.Context, path string, value any) error
}

// RedisSnapshotStore keeps each value as a JSON string under its path.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (s *RedisSnapshotStore) SetValue(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.client.Set(ctx, path, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// GetValue decodes the value at path into dst, returning ErrNotFound when absent.
func (s *RedisSnapshotStore) GetValue(ctx context.Context, path string, dst any) error {
	raw, err := s.client.Get(ctx, path).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return json.Unmarshal(raw, dst)
}
