package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventshuffle/internal/domain"
	"eventshuffle/pkg/redis"

	"go.uber.org/zap"
)

// ErrCacheDisabled is returned by HealthCheck when no Redis client is configured
var ErrCacheDisabled = errors.New("cache disabled")

// CacheService caches event headers with the cache-aside pattern.
// A nil Redis client turns every call into a direct store read.
type CacheService struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = redis.TTLEventHeader
	}
	return &CacheService{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured
func (c *CacheService) Enabled() bool {
	return c != nil && c.redis != nil
}

// GetEventHeaderWithCache retrieves the immutable event header, falling back to the store on miss or cache failure
func (c *CacheService) GetEventHeaderWithCache(ctx context.Context, eventID int64, dbFallback func(ctx context.Context, id int64) (*domain.EventHeader, error)) (*domain.EventHeader, error) {
	if !c.Enabled() {
		return dbFallback(ctx, eventID)
	}

	cacheKey := c.redis.KeyBuilder.KeyEventHeader(eventID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var header domain.EventHeader
		marshalErr := json.Unmarshal([]byte(cachedData), &header)
		if marshalErr == nil && header.ID == eventID {
			c.logger.Debug("Event header cache hit", zap.Int64("event_id", eventID))
			return &header, nil
		}
		c.logger.Warn("Event header cache corrupted, falling back to database",
			zap.Int64("event_id", eventID),
			zap.Error(marshalErr))
		_ = c.redis.Delete(ctx, cacheKey)
	} else if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("Event header cache error, falling back to database",
			zap.Int64("event_id", eventID),
			zap.Error(err))
	}

	c.logger.Debug("Event header cache miss", zap.Int64("event_id", eventID))
	header, err := dbFallback(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	// Unknown ids are not cached; a later create may take the id
	if header != nil {
		c.CacheEventHeader(ctx, header)
	}

	return header, nil
}

// CacheEventHeader stores the header, logging instead of failing when Redis is down
func (c *CacheService) CacheEventHeader(ctx context.Context, header *domain.EventHeader) {
	if !c.Enabled() || header == nil {
		return
	}

	cacheKey := c.redis.KeyBuilder.KeyEventHeader(header.ID)
	headerData, err := json.Marshal(header)
	if err != nil {
		c.logger.Error("Failed to marshal event header for caching",
			zap.Int64("event_id", header.ID),
			zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, cacheKey, string(headerData), c.ttl); err != nil {
		c.logger.Warn("Failed to cache event header",
			zap.Int64("event_id", header.ID),
			zap.Error(err))
	} else {
		c.logger.Debug("Event header cached successfully", zap.Int64("event_id", header.ID))
	}
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return ErrCacheDisabled
	}

	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}
