package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig_DefaultValues проверяет загрузку значений по умолчанию
func TestLoadConfig_DefaultValues(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "info", config.Logger.Level)
	assert.Equal(t, "dev", config.Environment)
	assert.Equal(t, "redis", config.Store.Backend)
	assert.Equal(t, "strong", config.Store.Consistency)
	assert.True(t, config.Store.RequireStrong)
	assert.False(t, config.Store.StrictConfigVersioning)
	assert.Equal(t, "8h", config.Admin.TokenTTL)
	assert.Equal(t, "01576593082", config.Shop.PaymentNumber)
	assert.Equal(t, "@HiddenSupport", config.Shop.SupportTelegram)
	assert.False(t, config.RabbitMQ.Enabled)
}

// TestLoadConfig_FileOverride проверяет переопределение значений из YAML файла
func TestLoadConfig_FileOverride(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  host: "127.0.0.1"
  port: 9090
  trust_proxy: true
environment: "prod"
store:
  backend: "postgres"
  consistency: "strong"
  strict_config_versioning: true
database:
  host: "prod-db"
  port: 5433
  name: "shop"
  user: "shop"
admin:
  token_ttl: "4h"
`
	require.NoError(t, os.WriteFile(tempFile, []byte(content), 0644))

	config, err := LoadConfig(tempFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.True(t, config.Server.TrustProxy)
	assert.Equal(t, "prod", config.Environment)
	assert.Equal(t, "postgres", config.Store.Backend)
	assert.True(t, config.Store.StrictConfigVersioning)
	assert.Equal(t, "prod-db", config.Database.Host)
	assert.Equal(t, 5433, config.Database.Port)
	assert.Equal(t, "4h", config.Admin.TokenTTL)
	// Не указанные в файле значения остаются по умолчанию
	assert.Equal(t, "info", config.Logger.Level)
}

// TestLoadConfig_JSONFile проверяет загрузку JSON файла
func TestLoadConfig_JSONFile(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tempFile, []byte(`{"store":{"backend":"memory","consistency":"strong"}}`), 0644))

	config, err := LoadConfig(tempFile)
	require.NoError(t, err)
	assert.Equal(t, "memory", config.Store.Backend)
}

// TestLoadConfig_EnvironmentOverride проверяет переопределение значений переменными окружения
func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_STRICT_CONFIG_VERSIONING", "true")
	t.Setenv("PAYMENT_NUMBER", "01700000000")
	t.Setenv("SUPPORT_TELEGRAM", "@shop_help")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("ADMIN_TOKEN_SECRET", "signing-key")
	t.Setenv("ADMIN_ALLOWED_IP", "  203.0.113.7  ")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("EMAILJS_SERVICE_ID", "svc")
	t.Setenv("EMAILJS_TEMPLATE_ID", "tpl")
	t.Setenv("EMAILJS_PUBLIC_KEY", "pub")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://shop.example, https://admin.example")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "memory", config.Store.Backend)
	assert.True(t, config.Store.StrictConfigVersioning)
	assert.Equal(t, "01700000000", config.Shop.PaymentNumber)
	assert.Equal(t, "@shop_help", config.Shop.SupportTelegram)
	assert.Equal(t, "s3cret", config.Admin.Password)
	assert.Equal(t, "signing-key", config.Admin.TokenSecret)
	assert.Equal(t, "203.0.113.7", config.Admin.AllowedIP)
	assert.Equal(t, "bot-token", config.Providers.Telegram.BotToken)
	assert.Equal(t, "42", config.Providers.Telegram.ChatID)
	assert.Equal(t, "svc", config.Providers.EmailJS.ServiceID)
	assert.Equal(t, "tpl", config.Providers.EmailJS.TemplateID)
	assert.Equal(t, "pub", config.Providers.EmailJS.PublicKey)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, config.Server.AllowedOrigins)
}

// TestLoadConfig_InvalidEnv проверяет ошибку разбора числовых и булевых переменных
func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SERVER_PORT")
}

// TestValidateConfig проверяет валидацию на некорректных значениях
func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"invalid port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"missing host", func(c *Config) { c.Server.Host = "" }, "server.host"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }, "store.backend"},
		{"unknown consistency", func(c *Config) { c.Store.Consistency = "weak" }, "store.consistency"},
		{"redis without addr", func(c *Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"postgres without db", func(c *Config) { c.Store.Backend = "postgres"; c.Database.Host = "" }, "postgres store backend"},
		{"rabbitmq without url", func(c *Config) { c.RabbitMQ.Enabled = true; c.RabbitMQ.URL = "" }, "rabbitmq.url"},
		{"bad ttl", func(c *Config) { c.Admin.TokenTTL = "eight hours" }, "admin.token_ttl"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := validateConfig(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	assert.NoError(t, validateConfig(Default()))
}

// TestLoadConfig_FileDoesNotExist проверяет обработку отсутствующего файла
func TestLoadConfig_FileDoesNotExist(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yaml")
	require.Error(t, err)
	assert.Equal(t, "failed to load config from file: config file does not exist: /non/existent/config.yaml", err.Error())
}

// TestLoadConfig_InvalidFileFormat проверяет обработку некорректного формата файла
func TestLoadConfig_InvalidFileFormat(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "invalid_config.txt")
	require.NoError(t, os.WriteFile(tempFile, []byte("this is not yaml or json"), 0644))

	_, err := LoadConfig(tempFile)
	assert.Error(t, err)
}

// TestDuration проверяет разбор длительностей с fallback
func TestDuration(t *testing.T) {
	assert.Equal(t, 8*time.Hour, Duration("8h", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("garbage", time.Minute))
	assert.Equal(t, time.Minute, Duration("-1s", time.Minute))
}

// TestConfig_Save проверяет сохранение и повторную загрузку конфигурации
func TestConfig_Save(t *testing.T) {
	config := Default()
	config.Server.Host = "127.0.0.1"
	config.Store.Backend = "memory"
	config.Shop.PaymentNumber = "01811111111"

	tempFile := filepath.Join(t.TempDir(), "nested", "saved_config.yaml")
	require.NoError(t, config.Save(tempFile))

	saved, err := LoadConfig(tempFile)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", saved.Server.Host)
	assert.Equal(t, "memory", saved.Store.Backend)
	assert.Equal(t, "01811111111", saved.Shop.PaymentNumber)
}
