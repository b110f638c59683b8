package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"taskhive/pkg/config"
)

var ErrCacheUnavailable = errors.New("cache: client not configured")

// RedisClient wraps the Redis client used for dashboard response caching.
// The cache is best-effort: every method tolerates a nil client so the API
// keeps working when Redis is absent.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Get retrieves a value from the cache. A missing key returns "" with no error.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrCacheUnavailable
	}
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// Set stores a value in the cache with the specified TTL
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return ErrCacheUnavailable
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes values from the cache
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if r == nil || r.client == nil {
		return ErrCacheUnavailable
	}
	return r.client.Del(ctx, keys...).Err()
}

// InvalidateDashboard drops the cached dashboard summary for a user. Called
// after every task mutation.
func (r *RedisClient) InvalidateDashboard(ctx context.Context, userID string) error {
	return r.Delete(ctx, DashboardKey(userID))
}

// DashboardKey builds the cache key for a user's dashboard summary.
func DashboardKey(userID string) string {
	return fmt.Sprintf("dashboard:summary:%s", userID)
}

// Close releases the underlying connection pool.
func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
