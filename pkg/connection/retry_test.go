package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), Fixed(3, time.Millisecond), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	cause := errors.New("refused")
	err := Retry(context.Background(), Fixed(2, time.Millisecond), func(context.Context) error {
		calls++
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 2 retries")
}

func TestRetry_NoRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), Fixed(-1, time.Hour), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Retry(ctx, Fixed(5, time.Hour), func(context.Context) error {
		cancel()
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextDelay(t *testing.T) {
	cfg := RetryConfig{Interval: time.Second, Multiplier: 2, MaxInterval: 3 * time.Second}
	assert.Equal(t, 2*time.Second, nextDelay(time.Second, cfg))
	assert.Equal(t, 3*time.Second, nextDelay(2*time.Second, cfg))
	assert.Equal(t, time.Second, nextDelay(time.Second, Fixed(1, time.Second)))
}
