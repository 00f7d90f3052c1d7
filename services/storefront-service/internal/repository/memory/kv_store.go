package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"StorefrontPlatform/services/storefront-service/internal/repository"
)

// KVStore хранилище в памяти процесса для тестов и локального запуска
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore создает пустое хранилище
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *KVStore) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	keys := make([]string, 0)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (s *KVStore) Consistency() repository.Consistency {
	return repository.ConsistencyStrong
}

func (s *KVStore) CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[key]
	if old == nil {
		if exists {
			return false, nil
		}
	} else if !exists || !bytes.Equal(current, old) {
		return false, nil
	}
	s.data[key] = append([]byte(nil), new...)
	return true, nil
}
