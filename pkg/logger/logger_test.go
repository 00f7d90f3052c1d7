package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestNew_ProdWritesJSON проверяет JSON формат и поля по умолчанию
func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Environment: "prod", Level: "info", Service: "storefront-service", Output: &buf})
	require.NoError(t, err)

	log.Info("order created", String("purchase_id", "HC-260101-ABCDEF"), Duration("elapsed", 1500*time.Millisecond))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "storefront-service", entry["service"])
	assert.Equal(t, "prod", entry["environment"])
	assert.Equal(t, "HC-260101-ABCDEF", entry["purchase_id"])
	assert.EqualValues(t, 1500, entry["elapsed"])
}

// TestNew_LevelFiltering проверяет, что сообщения ниже уровня отбрасываются
func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Environment: "prod", Level: "warn", Service: "svc", Output: &buf})
	require.NoError(t, err)

	log.Debug("debug")
	log.Info("info")
	assert.Zero(t, buf.Len())

	log.Warn("warn")
	assert.Contains(t, buf.String(), `"msg":"warn"`)
}

// TestNewLogger_DevEnvironment проверяет создание логгера для dev окружения
func TestNewLogger_DevEnvironment(t *testing.T) {
	log, err := NewLogger("dev", "debug", "test-service")
	require.NoError(t, err)
	require.NotNil(t, log)

	log.With(String("test", "value")).Debug("Test message with field")
}

// TestParseLevel проверяет разбор уровня с fallback на info
func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("invalid"))
}

// TestLogger_WithFields проверяет добавление полей через With
func TestLogger_WithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core)).With(String("component", "notifier"))

	log.Warn("telegram send failed", Error(errors.New("timeout")), Bool("skipped", false))

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "notifier", ctx["component"])
	assert.Equal(t, "timeout", ctx["error"])
	assert.Equal(t, false, ctx["skipped"])
}

// TestTraceID проверяет хранение trace_id в контексте
func TestTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "test-trace-123")

	assert.Equal(t, "test-trace-123", TraceID(ctx))
	assert.Equal(t, "test-trace-123", CtxField(ctx).Field.String)

	assert.Equal(t, "", TraceID(context.Background()))
	assert.Equal(t, "unknown", CtxField(context.Background()).Field.String)
}

// TestFields проверяет ключи вспомогательных полей
func TestFields(t *testing.T) {
	assert.Equal(t, "name", String("name", "x").Key)
	assert.Equal(t, "methods", Strings("methods", []string{"bKash"}).Key)
	assert.Equal(t, "count", Int("count", 1).Key)
	assert.Equal(t, "version", Int64("version", 2).Key)
	assert.Equal(t, "price", Float64("price", 199).Key)
	assert.Equal(t, "at", Time("at", time.Now()).Key)
	assert.Equal(t, "nil", Error(nil).Field.String)
	assert.Equal(t, "data", Any("data", map[string]int{"a": 1}).Key)
}

// TestNewNop проверяет, что nop логгер безопасен
func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("ignored")
	assert.NoError(t, log.Sync())
}
