package repository

import (
	"context"
	"fmt"
	"time"

	"salonq/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisGuardRepository keeps notification claims and rate-limit counters in Redis,
// shared by every process that talks to the same queue.
type RedisGuardRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisGuardRepository(client *redis.Client, prefix string) *RedisGuardRepository {
	if prefix == "" {
		prefix = "salonq"
	}
	return &RedisGuardRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisGuardRepository) claimKey(entryID int64) string {
	return fmt.Sprintf("%s:notify_claim:%d", r.prefix, entryID)
}

func (r *RedisGuardRepository) ClaimNotification(ctx context.Context, entryID int64, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	ok, err := r.client.SetNX(ctx, r.claimKey(entryID), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	return ok, nil
}

func (r *RedisGuardRepository) ReleaseNotification(ctx context.Context, entryID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, r.claimKey(entryID)).Err(); err != nil {
		return fmt.Errorf("failed to release notification claim: %w", err)
	}
	return nil
}

func (r *RedisGuardRepository) CheckRateLimit(ctx context.Context, phone string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("%s:rate_limit:%s", r.prefix, phone)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
