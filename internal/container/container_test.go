package container

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshuffle/internal/config"
	"eventshuffle/pkg/database"
	"eventshuffle/pkg/logger"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Environment:   "test",
		StoreDriver:   config.DriverSQLite,
		SQLitePath:    database.MemoryPath,
		EventCacheTTL: time.Minute,
		MaxRecurrence: 10,
		AutoMigrate:   true,
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		redisURL    string
		expectRedis bool
	}{
		{
			name:        "Container with Redis configured",
			redisURL:    "redis://" + mr.Addr(),
			expectRedis: true,
		},
		{
			name:        "Container without Redis configured",
			redisURL:    "",
			expectRedis: false,
		},
		{
			name:        "Container with invalid Redis URL",
			redisURL:    "invalid://redis-url",
			expectRedis: false, // Redis client initialization fails but container creation succeeds
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sqliteConfig()
			cfg.RedisURL = tt.redisURL
			testLogger := logger.NewNop()

			container, err := New(context.Background(), cfg, testLogger)
			require.NoError(t, err)
			require.NotNil(t, container)
			defer container.Close()

			assert.Equal(t, cfg, container.GetConfig())
			assert.Equal(t, testLogger, container.GetLogger())
			assert.Equal(t, tt.expectRedis, container.HasRedis())
			assert.Equal(t, tt.expectRedis, container.Services.Cache.Enabled())
			assert.NotNil(t, container.Services.Events)
			assert.NoError(t, container.Services.Store.HealthCheck(context.Background()))
		})
	}
}

func TestNew_ServesEvents(t *testing.T) {
	ctx := context.Background()
	container, err := New(ctx, sqliteConfig(), logger.NewNop())
	require.NoError(t, err)
	defer container.Close()

	created, err := container.EventService.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01"}, "")
	require.NoError(t, err)

	view, err := container.EventService.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2014-01-01"}, view.Dates)
}

func TestNew_MaxRecurrenceApplied(t *testing.T) {
	ctx := context.Background()
	container, err := New(ctx, sqliteConfig(), logger.NewNop())
	require.NoError(t, err)
	defer container.Close()

	_, err = container.EventService.CreateEvent(ctx, "Too many", nil, "DTSTART:20140101T000000Z\nRRULE:FREQ=DAILY;COUNT=11")
	assert.Error(t, err)
}

func TestNew_StoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		config *config.Config
	}{
		{
			name:   "Unknown driver",
			config: &config.Config{StoreDriver: "mongo"},
		},
		{
			name:   "Unreachable postgres",
			config: &config.Config{StoreDriver: config.DriverPostgres, DatabaseURL: "postgres://eventshuffle@127.0.0.1:1/eventshuffle?sslmode=disable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := New(context.Background(), tt.config, logger.NewNop())
			assert.Error(t, err)
			assert.Nil(t, container)
		})
	}
}

func TestStore_MigrateAndDrop(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(ctx, sqliteConfig())
	require.NoError(t, err)
	defer store.Close()

	ran, err := store.Migrate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ran)

	ran, err = store.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, ran)

	require.NoError(t, store.Drop(ctx))
	assert.NoError(t, store.Health(ctx))

	ran, err = store.Migrate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ran)
}
