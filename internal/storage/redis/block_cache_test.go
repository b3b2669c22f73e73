package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &Client{
		Client: goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestBlockCacheRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache, err := NewBlockCache(client, "test:block:")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.PutBlocks(ctx, []model.Block{
		{Number: 100, Timestamp: 3600},
		{Number: 200, Timestamp: 7200},
	}))

	got, err := cache.GetBlocks(ctx, []int64{3600, 7200, 10800})
	require.NoError(t, err)
	assert.Equal(t, map[int64]uint64{3600: 100, 7200: 200}, got)

	value, err := mr.Get("test:block:3600")
	require.NoError(t, err)
	assert.Equal(t, "100", value)
	assert.Zero(t, mr.TTL("test:block:3600"))
}

func TestBlockCacheEmptyInputs(t *testing.T) {
	_, client := setupTestRedis(t)
	cache, err := NewBlockCache(client, "")
	require.NoError(t, err)

	got, err := cache.GetBlocks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, cache.PutBlocks(context.Background(), nil))
}

func TestBlockCacheSkipsCorruptValues(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache, err := NewBlockCache(client, "")
	require.NoError(t, err)

	require.NoError(t, mr.Set(defaultBlockPrefix+"1", "not-a-number"))
	got, err := cache.GetBlocks(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewBlockCacheRequiresClient(t *testing.T) {
	_, err := NewBlockCache(nil, "")
	require.Error(t, err)
}

func TestNewRequiresAddr(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.Error(t, err)
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
}
