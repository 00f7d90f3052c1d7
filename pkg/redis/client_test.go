package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StorefrontPlatform/pkg/config"
)

// TestConnect_Unreachable проверяет ошибку при недоступном Redis
func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := NewConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.MaxRetries = 1
	cfg.RetryInterval = 10 * time.Millisecond

	_, err := Connect(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 retries")
}

// TestHealthCheck проверяет health check без инициализированного клиента
func TestHealthCheck(t *testing.T) {
	client := &Client{}
	assert.Error(t, client.HealthCheck(context.Background()))
	assert.NoError(t, client.Close())
}

// TestReader проверяет выбор клиента для чтения
func TestReader(t *testing.T) {
	primary := newClient(NewConfig(), "localhost:6379")
	replica := newClient(NewConfig(), "localhost:6380")
	defer primary.Close()
	defer replica.Close()

	c := &Client{Client: primary}
	assert.Same(t, primary, c.Reader())

	c.Replica = replica
	assert.Same(t, replica, c.Reader())
}

// TestFromAppConfig проверяет перевод секции конфигурации приложения
func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.RedisConfig{
		Addr:          "redis:6379",
		ReplicaAddr:   "redis-replica:6379",
		Password:      "secret",
		DB:            2,
		PoolSize:      20,
		MaxRetries:    5,
		RetryInterval: "250ms",
	})

	assert.Equal(t, "redis:6379", cfg.Addr)
	assert.Equal(t, "redis-replica:6379", cfg.ReplicaAddr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 20, cfg.PoolSize)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryInterval)

	defaults := FromAppConfig(config.RedisConfig{Addr: "x:1", RetryInterval: "bad"})
	assert.Equal(t, 10, defaults.PoolSize)
	assert.Equal(t, time.Second, defaults.RetryInterval)
}
