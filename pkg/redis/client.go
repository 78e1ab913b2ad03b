package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-museum/config"
)

const Nil = redis.Nil

// Client is a thin wrapper exposing the commands the session store needs.
type Client struct {
	cli *redis.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{cli: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})}
}

// Wrap adapts an existing go-redis client.
func Wrap(cli *redis.Client) *Client {
	return &Client{cli: cli}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx).Err()
}

func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.cli.Exists(ctx, keys...).Result()
}

func (c *Client) PTTL(ctx context.Context, key string) (time.Duration, error) {
	return c.cli.PTTL(ctx, key).Result()
}

func (c *Client) HGet(ctx context.Context, key, field string) ([]byte, error) {
	return c.cli.HGet(ctx, key, field).Bytes()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *Client) Pipeline() redis.Pipeliner {
	return c.cli.Pipeline()
}

func (c *Client) Close() error {
	return c.cli.Close()
}
