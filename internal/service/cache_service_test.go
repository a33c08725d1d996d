package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventshuffle/internal/domain"
	"eventshuffle/pkg/redis"
)

func setupCacheService(t *testing.T) (*miniredis.Miniredis, *CacheService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "production", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, NewCacheService(client, time.Minute, zap.NewNop())
}

type headerLoader struct {
	calls  int
	header *domain.EventHeader
	err    error
}

func (l *headerLoader) load(ctx context.Context, id int64) (*domain.EventHeader, error) {
	l.calls++
	return l.header, l.err
}

func TestCacheService_GetEventHeaderWithCache(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()

	loader := &headerLoader{header: &domain.EventHeader{
		ID:    3,
		Name:  "Jake's secret party",
		Dates: []string{"2014-01-01", "2014-01-05"},
	}}

	header, err := cache.GetEventHeaderWithCache(ctx, 3, loader.load)
	require.NoError(t, err)
	assert.Equal(t, loader.header, header)
	assert.Equal(t, 1, loader.calls)

	key := "prod:eventshuffle:event:3:header"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	header, err = cache.GetEventHeaderWithCache(ctx, 3, loader.load)
	require.NoError(t, err)
	assert.Equal(t, loader.header, header)
	assert.Equal(t, 1, loader.calls, "second read is served from cache")
}

func TestCacheService_MissingEventIsNotCached(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()

	loader := &headerLoader{}

	header, err := cache.GetEventHeaderWithCache(ctx, 9, loader.load)
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.False(t, mr.Exists("prod:eventshuffle:event:9:header"))
}

func TestCacheService_CorruptedEntryFallsBack(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()

	key := "prod:eventshuffle:event:4:header"
	mr.Set(key, "{not json")

	loader := &headerLoader{header: &domain.EventHeader{ID: 4, Name: "Bowling", Dates: []string{"2014-02-01"}}}

	header, err := cache.GetEventHeaderWithCache(ctx, 4, loader.load)
	require.NoError(t, err)
	assert.Equal(t, "Bowling", header.Name)
	assert.Equal(t, 1, loader.calls)

	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Contains(t, cached, `"name":"Bowling"`)
}

func TestCacheService_RedisDownFallsBack(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()
	mr.Close()

	loader := &headerLoader{header: &domain.EventHeader{ID: 5, Name: "Picnic", Dates: []string{"2014-03-01"}}}

	header, err := cache.GetEventHeaderWithCache(ctx, 5, loader.load)
	require.NoError(t, err)
	assert.Equal(t, "Picnic", header.Name)
	assert.Error(t, cache.HealthCheck(ctx))
}

func TestCacheService_FallbackError(t *testing.T) {
	_, cache := setupCacheService(t)

	boom := errors.New("connection refused")
	loader := &headerLoader{err: boom}

	header, err := cache.GetEventHeaderWithCache(context.Background(), 1, loader.load)
	assert.Nil(t, header)
	assert.ErrorIs(t, err, boom)
}

func TestCacheService_Disabled(t *testing.T) {
	cache := NewCacheService(nil, 0, zap.NewNop())
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	assert.ErrorIs(t, cache.HealthCheck(ctx), ErrCacheDisabled)

	loader := &headerLoader{header: &domain.EventHeader{ID: 1, Name: "Party"}}
	for i := 0; i < 2; i++ {
		_, err := cache.GetEventHeaderWithCache(ctx, 1, loader.load)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loader.calls)

	cache.CacheEventHeader(ctx, loader.header)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}
