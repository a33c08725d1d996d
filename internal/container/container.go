package container

import (
	"context"
	"errors"
	"fmt"

	"eventshuffle/internal/config"
	"eventshuffle/internal/service"
	"eventshuffle/pkg/logger"
	"eventshuffle/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Store        *Store
	RedisClient  *redis.Client
	Services     *service.Services
	EventService *service.EventService
}

// New creates a new dependency injection container. The store is required; Redis
// is optional and a connection failure only disables caching.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	if cfg.AutoMigrate {
		ran, err := store.Migrate(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if len(ran) > 0 {
			logger.WithField("migrations", ran).Info("Database migrations applied")
		}
	}

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	cacheService := service.NewCacheService(redisClient, cfg.EventCacheTTL, logger.Logger)
	eventService := service.NewEventService(store.EventRepository(), cacheService, logger.Logger, cfg.MaxRecurrence)

	logger.WithFields(map[string]interface{}{
		"store": cfg.StoreDriver,
		"cache": redisClient != nil,
	}).Info("Container initialized")

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		RedisClient:  redisClient,
		Services: &service.Services{
			Events: eventService,
			Cache:  cacheService,
			Store:  eventService,
		},
		EventService: eventService,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases Redis and the store
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	return errors.Join(errs...)
}
