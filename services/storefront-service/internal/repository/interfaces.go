package repository

import (
	"context"
	stderrors "errors"

	"StorefrontPlatform/services/storefront-service/internal/domain"
)

// Consistency уровень согласованности чтения backend'а
type Consistency string

const (
	// ConsistencyStrong запись видна следующему чтению
	ConsistencyStrong Consistency = "strong"
	// ConsistencyEventual чтение может отставать (например, с реплики)
	ConsistencyEventual Consistency = "eventual"
)

// ErrKeyNotFound ключ отсутствует в хранилище
var ErrKeyNotFound = stderrors.New("key not found")

// KVStore key-value хранилище с JSON значениями
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// List возвращает ключи с префиксом в лексикографическом порядке; limit <= 0 без ограничения
	List(ctx context.Context, prefix string, limit int) ([]string, error)
	Consistency() Consistency
}

// ConditionalStore условная запись: значение меняется, только если текущее равно old.
// old == nil означает "ключ должен отсутствовать".
type ConditionalStore interface {
	CompareAndSwap(ctx context.Context, key string, old, new []byte) (bool, error)
}

// ConfigRepository единственная запись конфигурации магазина
type ConfigRepository interface {
	GetOrInit(ctx context.Context) (*domain.Config, error)
	ApplyEdit(ctx context.Context, edit *domain.ConfigEdit) (*domain.Config, error)
}

// OrderRepository заказы покупателей
type OrderRepository interface {
	Create(ctx context.Context, product domain.Product, ip string) (*domain.Order, error)
	Get(ctx context.Context, purchaseID string) (*domain.Order, error)
	Patch(ctx context.Context, purchaseID string, patch domain.OrderPatch) (*domain.Order, error)
	Delete(ctx context.Context, purchaseID string) error
	List(ctx context.Context, limit int) ([]*domain.Order, error)
}
