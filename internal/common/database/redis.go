package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Wizard state and session lookups are single-key round trips.
const (
	redisPoolSize     = 10
	redisMinIdleConns = 2
	redisDialTimeout  = 5 * time.Second
	redisIOTimeout    = 2 * time.Second
)

// RedisClient holds wizard state and cached sessions.
type RedisClient struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdleConns,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
