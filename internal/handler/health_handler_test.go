package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventshuffle/internal/service"
	"eventshuffle/pkg/logger"
	"eventshuffle/pkg/redis"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealthHandler_Check(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	tests := []struct {
		name           string
		store          service.HealthChecker
		cache          *service.CacheService
		expectedStatus int
		expectedChecks map[string]string
	}{
		{
			name:           "Store up, cache disabled",
			store:          stubChecker{},
			cache:          nil,
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "up", "cache": "disabled"},
		},
		{
			name:           "Store and cache up",
			store:          stubChecker{},
			cache:          service.NewCacheService(client, time.Minute, zap.NewNop()),
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]string{"database": "up", "cache": "up"},
		},
		{
			name:           "Store down",
			store:          stubChecker{err: errors.New("connection refused")},
			cache:          nil,
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]string{"database": "down", "cache": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.store, tt.cache, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedChecks, resp.Checks)
			assert.Equal(t, logger.ServiceName, resp.Service)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "healthy", resp.Status)
			}
		})
	}
}

func TestHealthHandler_CacheDegraded(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	mr.Close()

	h := NewHealthHandler(stubChecker{}, service.NewCacheService(client, 0, zap.NewNop()), logger.NewNop())

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"degraded"`)
}
