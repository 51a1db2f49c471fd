package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance holding the token
// revocation set. It returns nil when no address is configured or the
// server cannot be reached; callers fall back to the in-process list.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.REDIS_ADDR == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.REDIS_ADDR,
		Password: cfg.REDIS_PASSWORD,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Notice: redis unreachable at %s: %v", cfg.REDIS_ADDR, err)
		return nil
	}
	return client
}
