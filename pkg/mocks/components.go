package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"StorefrontPlatform/pkg/rabbitmq"
)

// MockPublisher имитирует pkg/rabbitmq.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte, options ...rabbitmq.PublishOption) error {
	args := m.Called(ctx, routingKey, body, options)
	return args.Error(0)
}

// MockRateLimiter имитирует pkg/ratelimit.RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// MockHealthCheck имитирует проверку зависимости для pkg/health.DependencyChecker
type MockHealthCheck struct {
	mock.Mock
}

func (m *MockHealthCheck) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
