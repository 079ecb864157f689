package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/store-manager/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStore_MissingKeyYieldsDefaults(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, "test:snapshot:missing")

	state, err := NewRedisStore(client, "test:snapshot:missing").Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.AccountBalance.Equal(domain.DefaultBalance) {
		t.Errorf("expected default balance, got %s", state.AccountBalance)
	}
}

func TestRedisStore_SaveThenLoad(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	key := "test:snapshot:roundtrip"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	store := NewRedisStore(client, key)
	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertStateEqual(t, want, got)
}

func TestRedisStore_SaveOverwrites(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	key := "test:snapshot:overwrite"
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	store := NewRedisStore(client, key)
	store.Save(ctx, sampleState())

	next := domain.DefaultState()
	next.AccountBalance = decimal.NewFromInt(7)
	if err := store.Save(ctx, next); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := store.Load(ctx)
	if !got.AccountBalance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected balance 7, got %s", got.AccountBalance)
	}
	if len(got.Inventory) != 0 {
		t.Errorf("expected empty inventory, got %d items", len(got.Inventory))
	}
}

func TestRedisStore_MalformedValue(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	key := "test:snapshot:malformed"
	client.Set(ctx, key, "{", 0)
	defer client.Del(ctx, key)

	if _, err := NewRedisStore(client, key).Load(ctx); err == nil {
		t.Error("expected error for malformed snapshot")
	}
}
