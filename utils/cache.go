// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"schedly/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the Redis client used for availability response caching.
var CacheClient *redis.Client

// InitCache initializes the Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// AvailabilityCacheKey builds the cache key for an availability query.
func AvailabilityCacheKey(businessID, serviceID, startDate, endDate string) string {
	return fmt.Sprintf("avail:%s:%s:%s:%s", businessID, serviceID, startDate, endDate)
}

// InvalidateAvailability removes every cached availability response for a
// business. Called after any appointment write so stale slot lists are never
// served past the write.
func InvalidateAvailability(ctx context.Context, client *redis.Client, businessID string) error {
	pattern := fmt.Sprintf("avail:%s:*", businessID)
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
