package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	generationKeyPrefix = "statistics:generation:"
	epochKey            = "statistics:epoch"
)

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Generation(ctx context.Context, departmentID string) (string, error) {
	values, err := c.client.MGet(ctx, generationKeyPrefix+departmentID, epochKey).Result()
	if err != nil {
		return "", err
	}
	return generationToken(counterValue(values[0]), counterValue(values[1])), nil
}

func (c *RedisCache) Bump(ctx context.Context, departmentID string) error {
	if departmentID == "" {
		return c.client.Incr(ctx, epochKey).Err()
	}
	return c.client.Incr(ctx, generationKeyPrefix+departmentID).Err()
}

func counterValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}

func generationToken(department, epoch string) string {
	return department + "." + epoch
}
