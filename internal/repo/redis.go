package repo

import (
	"GoDrop/config"
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// InitRedis opens the Redis connection used by the share-info cache.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	log.Println("init redis success")
	return client, nil
}
