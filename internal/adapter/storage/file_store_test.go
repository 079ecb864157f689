package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/store-manager/internal/core/domain"
)

func TestFileStore_MissingFileYieldsDefaults(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "data.json"))

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assertStateEqual(t, domain.DefaultState(), state)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewFileStore(path)

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))

	got, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assertStateEqual(t, want, got)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "data.json"))

	require.NoError(t, store.Save(ctx, sampleState()))

	next := domain.DefaultState()
	next.AccountBalance = decimal.NewFromInt(1)
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertStateEqual(t, next, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestFileStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorContains(t, err, path)
}

func TestFileStore_SaveIntoMissingDirectory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing", "data.json"))

	err := store.Save(context.Background(), domain.DefaultState())
	assert.Error(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultDataFile, NewFileStore("").Path())
}
