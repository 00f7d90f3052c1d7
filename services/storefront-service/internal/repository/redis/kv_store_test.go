package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "StorefrontPlatform/pkg/redis"
	"StorefrontPlatform/services/storefront-service/internal/repository"
	"StorefrontPlatform/services/storefront-service/internal/repository/kvtest"
)

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, "orders-store:orders/", globEscape("orders-store:orders/"))
	assert.Equal(t, `a\*b\?c\[d\]\\`, globEscape(`a*b?c[d]\`))
}

func TestKVStore_Key(t *testing.T) {
	s := &KVStore{namespace: "orders-store"}
	assert.Equal(t, "orders-store:orders/HC-1", s.key("orders/HC-1"))
}

func TestNewKVStore_Consistency(t *testing.T) {
	client := &pkgredis.Client{Client: nil}
	s := NewKVStore(client, "ns", repository.ConsistencyEventual)
	assert.Equal(t, repository.ConsistencyEventual, s.Consistency())

	s = NewKVStore(client, "ns", repository.ConsistencyStrong)
	assert.Equal(t, repository.ConsistencyStrong, s.Consistency())
}

// TestKVStore_Contract требует запущенный Redis: STOREFRONT_TEST_REDIS_ADDR=localhost:6379
func TestKVStore_Contract(t *testing.T) {
	addr := os.Getenv("STOREFRONT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOREFRONT_TEST_REDIS_ADDR not set")
	}

	cfg := pkgredis.NewConfig()
	cfg.Addr = addr
	cfg.MaxRetries = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := pkgredis.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	n := 0
	kvtest.Run(t, func(t *testing.T) repository.KVStore {
		n++
		namespace := fmt.Sprintf("storefront-test-%d-%d", time.Now().UnixNano(), n)
		store := NewKVStore(client, namespace, repository.ConsistencyStrong)
		t.Cleanup(func() {
			keys, _ := store.List(context.Background(), "", 0)
			for _, k := range keys {
				_ = store.Delete(context.Background(), k)
			}
		})
		return store
	})
}
