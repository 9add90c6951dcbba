package config

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when no address is configured or the server does
// not answer; callers then fall back to the database.
func ConnectRedis(cfg RedisConfig) *redis.Client {
	addr := strings.ReplaceAll(strings.TrimSpace(cfg.Addr), " ", "")
	if addr == "" {
		return nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		slog.Warn("redis ping failed, using database token store", "addr", addr, "error", err)
		_ = rc.Close()
		return nil
	}

	slog.Info("redis connected", "addr", addr)
	return rc
}
