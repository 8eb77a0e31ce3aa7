package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyCart, `[{"id":"1"}]`))
	v, err := s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Set(ctx, KeyCart, `[]`))
	v, err = s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Delete(ctx, KeyCart))
	_, err = s.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete(ctx, KeyCart))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseStore(t, NewRedis(rdb, "fb:"))

	require.NoError(t, NewRedis(rdb, "fb:").Set(context.Background(), KeyToken, "abc"))
	got, err := mr.Get("fb:" + KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestNamespaceIsolatesClients(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Namespace(base, "client-a")
	b := Namespace(base, "client-b")

	exerciseStore(t, a)

	require.NoError(t, a.Set(ctx, KeyToken, "token-a"))
	_, err := b.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := base.Get(ctx, "client-a:"+KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token-a", raw)
}
