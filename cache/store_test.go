package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"name":"Actor"}`)
	require.NoError(t, s.Set(ctx, "a", value))
	value[0] = 'X'

	got, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"name":"Actor"}`, string(got))

	require.NoError(t, s.Set(ctx, "b", []byte(`2`)))
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Delete(ctx, "a"))
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, s.Purge(ctx))
	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStore_Unbounded(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)
	assert.False(t, s.Bounded())
	exerciseStore(t, s)

	ctx := context.Background()
	for i := range 5000 {
		require.NoError(t, s.Set(ctx, ModuleKey(i, "").String(), []byte(`1`)))
	}
	n, _ := s.Len(ctx)
	assert.Equal(t, 5000, n)
}

func TestMemoryStore_BoundedEvictsLeastRecentlyUsed(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	assert.True(t, s.Bounded())
	exerciseStore(t, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", []byte(`1`)))
	require.NoError(t, s.Set(ctx, "b", []byte(`2`)))
	_, _, _ = s.Get(ctx, "a")
	require.NoError(t, s.Set(ctx, "c", []byte(`3`)))

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("abc")))
	got, _, _ := s.Get(ctx, "k")
	got[0] = 'z'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:", ttl), mr
}

func TestRedisStore(t *testing.T) {
	s, _ := setupRedisStore(t, 0)
	exerciseStore(t, s)
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	s, mr := setupRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, s.Set(ctx, "k", []byte(`1`)))
	assert.True(t, mr.Exists("test:k"))

	require.NoError(t, s.Purge(ctx))
	assert.False(t, mr.Exists("test:k"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte(`1`)))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := OpenRedisStore(ctx, RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, "scriptbridge:discovery:", s.prefix)

	_, err = OpenRedisStore(ctx, RedisOptions{URL: "not a url"})
	assert.Error(t, err)
}

func TestCache_WithRedisStore(t *testing.T) {
	s, _ := setupRedisStore(t, 0)
	c, err := New(Config{Store: s})
	require.NoError(t, err)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (info, error) {
		calls++
		return info{Name: "unreal"}, nil
	}
	_, _, err = Fetch(ctx, c, ModuleKey(1, ""), compute)
	require.NoError(t, err)
	got, cached, err := Fetch(ctx, c, ModuleKey(1, ""), compute)
	require.NoError(t, err)

	assert.True(t, cached)
	assert.Equal(t, "unreal", got.Name)
	assert.Equal(t, 1, calls)
}
