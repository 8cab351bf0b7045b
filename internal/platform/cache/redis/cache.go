package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache is a namespaced string cache on top of a redis client.
type Cache struct {
	client      *goredis.Client
	serviceName string
}

// NewCache wraps client; keys are prefixed with serviceName.
func NewCache(client *goredis.Client, serviceName string) *Cache {
	return &Cache{client: client, serviceName: serviceName}
}

// Connect dials addr. When it is empty or unreachable the function logs and
// returns nil, and callers run without a cache.
func Connect(ctx context.Context, addr, serviceName string, logger *slog.Logger) (*Cache, func()) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		if logger != nil {
			logger.Info("REDIS_ADDR not set, recommendation cache disabled")
		}
		return nil, func() {}
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if logger != nil {
			logger.Warn("failed to connect to redis, recommendation cache disabled", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", addr))
	}
	return NewCache(client, serviceName), func() { _ = client.Close() }
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Get returns "" with a nil error on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (c *Cache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", c.serviceName, operation, key)
}
