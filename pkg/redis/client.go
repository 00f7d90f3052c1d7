package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"StorefrontPlatform/pkg/config"
	"StorefrontPlatform/pkg/connection"
)

// Client подключение к Redis: основной узел и, при наличии, реплика для чтения
type Client struct {
	Client  *redis.Client
	Replica *redis.Client
}

// Config представляет конфигурацию Redis
type Config struct {
	Addr        string
	ReplicaAddr string
	Password    string
	DB          int
	// Connection pool settings
	PoolSize    int
	MinIdleConn int
	// Retry settings
	MaxRetries    int
	RetryInterval time.Duration
}

// NewConfig создает конфигурацию по умолчанию
func NewConfig() *Config {
	return &Config{
		Addr:          "localhost:6379",
		PoolSize:      10,
		MinIdleConn:   2,
		MaxRetries:    3,
		RetryInterval: 1 * time.Second,
	}
}

// FromAppConfig переводит секцию redis конфигурации приложения
func FromAppConfig(c config.RedisConfig) *Config {
	cfg := NewConfig()
	cfg.Addr = c.Addr
	cfg.ReplicaAddr = c.ReplicaAddr
	cfg.Password = c.Password
	cfg.DB = c.DB
	if c.PoolSize > 0 {
		cfg.PoolSize = c.PoolSize
	}
	if c.MinIdleConn >= 0 {
		cfg.MinIdleConn = c.MinIdleConn
	}
	if c.MaxRetries >= 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	cfg.RetryInterval = config.Duration(c.RetryInterval, cfg.RetryInterval)
	return cfg
}

func newClient(cfg *Config, addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})
}

// dial создает клиента и проверяет его ping с retry
func dial(ctx context.Context, cfg *Config, addr string) (*redis.Client, error) {
	var client *redis.Client
	err := connection.Retry(ctx, connection.Fixed(cfg.MaxRetries, cfg.RetryInterval), func(ctx context.Context) error {
		c := newClient(cfg, addr)
		if err := c.Ping(ctx).Err(); err != nil {
			c.Close()
			return fmt.Errorf("failed to ping redis %s: %w", addr, err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Connect устанавливает подключение к Redis с retry логикой
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	primary, err := dial(ctx, cfg, cfg.Addr)
	if err != nil {
		return nil, err
	}

	c := &Client{Client: primary}
	if cfg.ReplicaAddr != "" {
		replica, err := dial(ctx, cfg, cfg.ReplicaAddr)
		if err != nil {
			primary.Close()
			return nil, err
		}
		c.Replica = replica
	}

	return c, nil
}

// Reader возвращает клиента для чтения: реплику, если она подключена
func (r *Client) Reader() *redis.Client {
	if r.Replica != nil {
		return r.Replica
	}
	return r.Client
}

// Close закрывает подключения к Redis
func (r *Client) Close() error {
	var firstErr error
	if r.Replica != nil {
		firstErr = r.Replica.Close()
	}
	if r.Client != nil {
		if err := r.Client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HealthCheck проверяет состояние подключения к Redis
func (r *Client) HealthCheck(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}
