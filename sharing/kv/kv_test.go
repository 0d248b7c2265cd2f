package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/composable_go/sharing/kv"
)

func backends(t *testing.T) map[string]kv.Backend {
	t.Helper()

	mem, err := kv.NewMemDB()
	require.NoError(t, err)

	lite, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	inner, err := kv.NewMemDB()
	require.NoError(t, err)
	cached, err := kv.NewCached(inner, 16)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cached.Close() })

	return map[string]kv.Backend{
		"memdb":  mem,
		"sqlite": lite,
		"cached": cached,
	}
}

func TestBackend_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := b.Get(ctx, "count")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, b.Set(ctx, "count", []byte("1")))
			require.NoError(t, b.Set(ctx, "count", []byte("2")))
			require.NoError(t, b.Set(ctx, "other", []byte("x")))

			v, ok, err := b.Get(ctx, "count")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", string(v))
		})
	}
}

func TestBackend_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			buf := []byte("abc")
			require.NoError(t, b.Set(ctx, "k", buf))
			buf[0] = 'z'

			v, _, err := b.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "abc", string(v))
		})
	}
}

func TestSQLite_ReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	db, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "theme", []byte(`"dark"`)))
	require.NoError(t, db.Close())

	_, _, err = db.Get(ctx, "theme")
	assert.ErrorIs(t, err, kv.ErrClosed)

	db, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := db.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"dark"`, string(v))
}

func TestMemDB_Keys(t *testing.T) {
	ctx := context.Background()
	db, err := kv.NewMemDB()
	require.NoError(t, err)

	require.NoError(t, db.Set(ctx, "b", nil))
	require.NoError(t, db.Set(ctx, "a", nil))
	require.NoError(t, db.Set(ctx, "b", []byte("again")))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

type countingBackend struct {
	kv.Backend
	gets int
}

func (c *countingBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.Backend.Get(ctx, key)
}

func TestCached_WriteThrough(t *testing.T) {
	ctx := context.Background()
	inner, err := kv.NewMemDB()
	require.NoError(t, err)
	counting := &countingBackend{Backend: inner}

	cached, err := kv.NewCached(counting, 8)
	require.NoError(t, err)
	defer cached.Close()

	require.NoError(t, cached.Set(ctx, "k", []byte("v")))

	v, ok, err := inner.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	for range 3 {
		v, ok, err = cached.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", string(v))
	}
	// ristretto may refuse admission, but never serves more misses than reads
	assert.LessOrEqual(t, counting.gets, 3)
}
