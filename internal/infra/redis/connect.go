package redis

import (
	"context"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
	pkgRedis "github.com/vogiaan1904/ticketbottle-museum/pkg/redis"
)

func Connect(ctx context.Context, cfg config.RedisConfig, l logger.Logger) (*pkgRedis.Client, error) {
	cli := pkgRedis.NewClient(cfg)

	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	l.Infof(ctx, "Connected to Redis at %s", cfg.Addr)

	return cli, nil
}

func Disconnect(ctx context.Context, cli *pkgRedis.Client, l logger.Logger) {
	if cli == nil {
		return
	}

	if err := cli.Close(); err != nil {
		l.Warnf(ctx, "redis.Disconnect: %v", err)
		return
	}

	l.Info(ctx, "Connection to Redis closed.")
}
