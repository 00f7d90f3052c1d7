package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"StorefrontPlatform/services/storefront-service/internal/repository"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      BYTEA       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

// KVStore реализация KVStore на таблице kv_store в PostgreSQL.
// Чтение всегда идет с primary, поэтому согласованность строгая.
type KVStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewKVStore создает новый экземпляр KVStore
func NewKVStore(pool *pgxpool.Pool, namespace string) *KVStore {
	return &KVStore{pool: pool, namespace: namespace}
}

// EnsureSchema создает таблицу kv_store, если ее нет
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`

	var value []byte
	err := s.pool.QueryRow(ctx, query, s.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (namespace, key, value, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE namespace = $1 AND key = $2`

	if _, err := s.pool.Exec(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	query := `SELECT key FROM kv_store WHERE namespace = $1 AND starts_with(key, $2)
		ORDER BY key COLLATE "C" LIMIT $3`

	var lim interface{}
	if limit > 0 {
		lim = limit
	}

	rows, err := s.pool.Query(ctx, query, s.namespace, prefix, lim)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", prefix, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan keys with prefix %s: %w", prefix, err)
	}
	return keys, nil
}

func (s *KVStore) Consistency() repository.Consistency {
	return repository.ConsistencyStrong
}

// CompareAndSwap: old == nil вставляет ключ только если его нет,
// иначе UPDATE срабатывает лишь при совпадении текущего значения
func (s *KVStore) CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error) {
	var (
		query string
		args  []interface{}
	)
	if old == nil {
		query = `INSERT INTO kv_store (namespace, key, value, updated_at) VALUES ($1, $2, $3, now())
			ON CONFLICT (namespace, key) DO NOTHING`
		args = []interface{}{s.namespace, key, new}
	} else {
		query = `UPDATE kv_store SET value = $3, updated_at = now()
			WHERE namespace = $1 AND key = $2 AND value = $4`
		args = []interface{}{s.namespace, key, new, old}
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-swap %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}
