package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/store-manager/internal/core/domain"
)

const DefaultRedisKey = "store:snapshot"

// RedisStore keeps the whole snapshot document under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (domain.State, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DefaultState(), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("get %s: %w", r.key, err)
	}

	state, err := decodeState(data)
	if err != nil {
		return domain.State{}, fmt.Errorf("redis key %s: %w", r.key, err)
	}
	return state, nil
}

func (r *RedisStore) Save(ctx context.Context, state domain.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}
