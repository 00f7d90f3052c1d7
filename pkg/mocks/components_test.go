package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"StorefrontPlatform/pkg/health"
	"StorefrontPlatform/pkg/rabbitmq"
	"StorefrontPlatform/pkg/ratelimit"
)

var (
	_ rabbitmq.Publisher    = (*MockPublisher)(nil)
	_ ratelimit.RateLimiter = (*MockRateLimiter)(nil)
)

func TestMockRateLimiter(t *testing.T) {
	m := &MockRateLimiter{}
	m.On("CheckRateLimit", mock.Anything, "ip:1", 5, time.Minute).Return(true, nil)

	exceeded, err := m.CheckRateLimit(context.Background(), "ip:1", 5, time.Minute)
	assert.NoError(t, err)
	assert.True(t, exceeded)
	m.AssertExpectations(t)
}

func TestMockHealthCheck(t *testing.T) {
	m := &MockHealthCheck{}
	m.On("Check", mock.Anything).Return(errors.New("down"))

	checker := health.NewDependencyChecker("test", time.Second)
	checker.Register("store", m.Check)
	status := checker.Check(context.Background())

	assert.False(t, status.Healthy())
	m.AssertExpectations(t)
}
