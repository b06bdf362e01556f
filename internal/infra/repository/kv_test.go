package repository

import (
	"context"
	"path/filepath"
	"testing"

	repo "rental/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// どの実装でも同じ振る舞い
func exerciseKeyValueStore(t *testing.T, store repo.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, repo.LocationKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, repo.LocationKey, `{"district":"강남구"}`))
	v, ok, err := store.Get(ctx, repo.LocationKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"district":"강남구"}`, v)

	//上書き
	require.NoError(t, store.Set(ctx, repo.LocationKey, `{"district":"마포구"}`))
	v, _, err = store.Get(ctx, repo.LocationKey)
	require.NoError(t, err)
	assert.Equal(t, `{"district":"마포구"}`, v)
}

func TestKVMemoryRepository(t *testing.T) {
	exerciseKeyValueStore(t, NewKVMemoryRepository())
}

func TestKVSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenKVSQLite(path)
	require.NoError(t, err)
	exerciseKeyValueStore(t, store)
	require.NoError(t, store.Close())

	//開き直しても残っている
	reopened, err := OpenKVSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	v, ok, err := reopened.Get(context.Background(), repo.LocationKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"district":"마포구"}`, v)
}
