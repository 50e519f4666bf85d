// Package redis provides the redis connection and the distributed payment lock.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/remp2020/crm-stripe-module/internal/config"
)

type Client struct {
	cli    *redis.Client
	logger *slog.Logger
}

func Connect(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) (*Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis connection established",
		"addr", cfg.Addr,
		"db", cfg.DB)

	return &Client{cli: c, logger: logger}, nil
}

func (c *Client) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *Client) Close() error {
	c.logger.Info("closing redis connection")
	return c.cli.Close()
}
