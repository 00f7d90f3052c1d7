package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDependencyChecker_AllHealthy проверяет статус без сбоев
func TestDependencyChecker_AllHealthy(t *testing.T) {
	checker := NewDependencyChecker("v1.0.0", time.Second)
	checker.Register("store", func(ctx context.Context) error { return nil })

	status := checker.Check(context.Background())
	assert.True(t, status.Healthy())
	assert.Equal(t, "v1.0.0", status.Version)
	assert.Equal(t, "healthy", status.Services["store"].Status)
	assert.False(t, status.Timestamp.IsZero())
}

// TestDependencyChecker_Failure проверяет деградацию при сбое зависимости
func TestDependencyChecker_Failure(t *testing.T) {
	checker := NewDependencyChecker("v1.0.0", time.Second)
	checker.Register("store", func(ctx context.Context) error { return nil })
	checker.Register("rabbitmq", func(ctx context.Context) error { return errors.New("connection closed") })

	status := checker.Check(context.Background())
	assert.False(t, status.Healthy())
	assert.Equal(t, "unhealthy", status.Services["rabbitmq"].Status)
	assert.Equal(t, "connection closed", status.Services["rabbitmq"].Details)
	assert.Equal(t, []string{"rabbitmq", "store"}, checker.Names())
}

// TestDependencyChecker_Timeout проверяет, что зависшая проверка ограничена таймаутом
func TestDependencyChecker_Timeout(t *testing.T) {
	checker := NewDependencyChecker("v1", 20*time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	status := checker.Check(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, status.Healthy())
}

// TestHandlers проверяет HTTP обработчики
func TestHandlers(t *testing.T) {
	healthy := NewDependencyChecker("v1", time.Second)
	broken := NewDependencyChecker("v1", time.Second)
	broken.Register("store", func(ctx context.Context) error { return errors.New("down") })

	w := httptest.NewRecorder()
	Handler(healthy).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)

	w = httptest.NewRecorder()
	Handler(broken).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	ReadyHandler(broken).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")

	w = httptest.NewRecorder()
	ReadyHandler(healthy).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	LiveHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}
