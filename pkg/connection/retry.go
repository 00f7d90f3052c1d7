package connection

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig параметры повторных попыток подключения
type RetryConfig struct {
	MaxRetries  int           // повторов после первой попытки
	Interval    time.Duration // пауза перед первым повтором
	MaxInterval time.Duration // 0 без ограничения
	Multiplier  float64       // <= 1 дает фиксированную паузу
}

// Fixed возвращает конфигурацию с постоянной паузой
func Fixed(maxRetries int, interval time.Duration) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, Interval: interval}
}

// Retry вызывает operation, пока она не вернет nil или не кончатся попытки.
// Отмена контекста прерывает ожидание между попытками.
func Retry(ctx context.Context, config RetryConfig, operation func(ctx context.Context) error) error {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	var lastErr error
	delay := config.Interval
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if lastErr = operation(ctx); lastErr == nil {
			return nil
		}
		if attempt == config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextDelay(delay, config)
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

func nextDelay(delay time.Duration, config RetryConfig) time.Duration {
	if config.Multiplier <= 1 {
		return delay
	}
	next := time.Duration(float64(delay) * config.Multiplier)
	if config.MaxInterval > 0 && next > config.MaxInterval {
		return config.MaxInterval
	}
	return next
}
