package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	pkgredis "StorefrontPlatform/pkg/redis"
	"StorefrontPlatform/services/storefront-service/internal/repository"
)

const scanBatch = 200

// KVStore реализация KVStore поверх Redis. Все ключи живут под namespace,
// при eventual согласованности чтение идет с реплики.
type KVStore struct {
	writer      *redis.Client
	reader      *redis.Client
	namespace   string
	consistency repository.Consistency
}

// NewKVStore создает хранилище. Для eventual используется реплика клиента, если она настроена.
func NewKVStore(client *pkgredis.Client, namespace string, consistency repository.Consistency) *KVStore {
	reader := client.Client
	if consistency == repository.ConsistencyEventual {
		reader = client.Reader()
	}
	return &KVStore{
		writer:      client.Client,
		reader:      reader,
		namespace:   namespace,
		consistency: consistency,
	}
}

func (s *KVStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.reader.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return data, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.writer.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.writer.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}

// List обходит ключи через SCAN (без блокирующего KEYS) и сортирует результат
func (s *KVStore) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	match := globEscape(s.key(prefix)) + "*"
	trim := len(s.namespace) + 1

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		batch, next, err := s.reader.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys with prefix %s: %w", prefix, err)
		}
		for _, k := range batch {
			seen[k[trim:]] = struct{}{}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (s *KVStore) Consistency() repository.Consistency {
	return s.consistency
}

// CompareAndSwap выполняет условную запись через WATCH/MULTI/EXEC
func (s *KVStore) CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error) {
	k := s.key(key)
	swapped := false

	err := s.writer.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if old != nil {
				return nil
			}
		case err != nil:
			return err
		default:
			if old == nil || !bytes.Equal(current, old) {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, new, 0)
			return nil
		})
		if err != nil {
			return err
		}
		swapped = true
		return nil
	}, k)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-swap %s in Redis: %w", key, err)
	}
	return swapped, nil
}

// globEscape экранирует спецсимволы шаблона MATCH
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
