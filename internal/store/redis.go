package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

const redisDialTimeout = 5 * time.Second

// DefaultSnapshotKey is the Redis key used when none is configured.
const DefaultSnapshotKey = "cart:default"

// RedisSnapshotter keeps the cart as a JSON array under a single Redis key.
type RedisSnapshotter struct {
	client *redis.Client
	key    string
}

// NewRedisClient creates a client and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := client.Ping(dialCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	return client, nil
}

// NewRedisSnapshotter creates a RedisSnapshotter writing to key.
func NewRedisSnapshotter(client *redis.Client, key string) *RedisSnapshotter {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisSnapshotter{client: client, key: key}
}

// Load returns the saved items. A missing key yields an empty slice.
func (s *RedisSnapshotter) Load(ctx context.Context) ([]model.CartLineItem, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.CartLineItem{}, nil
		}
		return nil, fmt.Errorf("get cart snapshot %s: %w", s.key, err)
	}

	var items []model.CartLineItem
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot %s: %w", s.key, err)
	}

	return items, nil
}

// Save replaces the saved items.
func (s *RedisSnapshotter) Save(ctx context.Context, items []model.CartLineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set cart snapshot %s: %w", s.key, err)
	}

	return nil
}

// Delete removes the saved items.
func (s *RedisSnapshotter) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete cart snapshot %s: %w", s.key, err)
	}
	return nil
}
