package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter интерфейс для ограничения частоты запросов
type RateLimiter interface {
	// CheckRateLimit возвращает true, если лимит для ключа превышен
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisRateLimiter fixed window счетчик в Redis
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisRateLimiter создает новый экземпляр RedisRateLimiter
func NewRedisRateLimiter(client *redis.Client, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "rate_limit"
	}
	return &RedisRateLimiter{client: client, prefix: prefix}
}

// windowKey формирует ключ счетчика для текущего окна
func (r *RedisRateLimiter) windowKey(key string, window time.Duration, now time.Time) string {
	slot := now.UnixNano() / int64(window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, slot)
}

// CheckRateLimit увеличивает счетчик окна и сравнивает его с лимитом.
// INCR и EXPIRE NX выполняются одной транзакцией, TTL ставится один раз на окно.
func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, nil
	}

	redisKey := r.windowKey(key, window, time.Now())

	tx := r.client.TxPipeline()
	incr := tx.Incr(ctx, redisKey)
	tx.ExpireNX(ctx, redisKey, window)
	if _, err := tx.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit transaction: %w", err)
	}

	return incr.Val() > int64(limit), nil
}

// NoopRateLimiter никогда не ограничивает запросы
type NoopRateLimiter struct{}

// CheckRateLimit всегда возвращает false
func (NoopRateLimiter) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}
