package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/utils"
)

// Cache is a thin TTL cache over Redis. New returns (nil, nil) when
// REDIS_ADDR is unset so callers can treat the cache as strictly optional.
type Cache struct {
	log    *logger.Logger
	client *redis.Client
}

func New(log *logger.Logger) (*Cache, error) {
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{log: log.With("client", "RedisCache"), client: client}, nil
}

// Get returns ("", nil) on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
