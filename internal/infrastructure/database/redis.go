package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis wraps the Redis client used for session state
type Redis struct {
	client *redis.Client
	config config.RedisConfig
	logger *logger.Logger
}

// NewRedis creates a Redis wrapper; call Connect before use
func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	return &Redis{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// Connect opens the client and verifies the server answers
func (r *Redis) Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	r.client = client
	r.logger.Info("Connected to Redis", zap.String("addr", r.config.Addr), zap.Int("db", r.config.DB))
	return nil
}

// Client returns the underlying client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Health checks if Redis is reachable
func (r *Redis) Health(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
