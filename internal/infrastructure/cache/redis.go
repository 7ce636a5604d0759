package cache

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/config"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// InitRedis connects the client backing the cart store.
func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		config.Logger().Fatalf("failed to connect to Redis: %v", err)
	}

	RedisClient = client
	config.Logger().Info("Redis connected")
	return client
}
