package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewClient connects to Redis. It returns a nil client when no address is
// configured; consumers fall back to log-only behaviour in that case.
func NewClient(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Infow("redis_disabled")
		return nil, nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("redis_connected", "addr", cfg.Redis.Addr)

	lc.Append(fx.StopHook(func() error {
		return client.Close()
	}))
	return client, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
