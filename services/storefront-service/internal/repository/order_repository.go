package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/pkg/purchaseid"
)

const (
	// MaxListLimit верхняя граница размера списка заказов
	MaxListLimit = 200
	// MaxListScan сколько ключей заказов читается при построении списка
	MaxListScan = 500

	maxIDAttempts = 5
)

// KVOrderRepository хранит заказы под ключами orders/{purchaseId}
type KVOrderRepository struct {
	store  KVStore
	ids    *purchaseid.Generator
	now    func() time.Time
	logger logger.Logger
}

// OrderOption настройка KVOrderRepository
type OrderOption func(*KVOrderRepository)

// WithOrderClock подменяет источник времени
func WithOrderClock(now func() time.Time) OrderOption {
	return func(r *KVOrderRepository) { r.now = now }
}

// WithIDGenerator подменяет генератор идентификаторов
func WithIDGenerator(ids *purchaseid.Generator) OrderOption {
	return func(r *KVOrderRepository) { r.ids = ids }
}

// NewOrderRepository создает репозиторий заказов
func NewOrderRepository(store KVStore, log logger.Logger, opts ...OrderOption) *KVOrderRepository {
	r := &KVOrderRepository{
		store:  store,
		ids:    purchaseid.NewGenerator(),
		now:    time.Now,
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create выделяет новый идентификатор и сохраняет заказ со снимком товара
func (r *KVOrderRepository) Create(ctx context.Context, product domain.Product, ip string) (*domain.Order, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		now := r.now()
		id, err := r.ids.New(now)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to generate purchase id")
		}

		order := domain.NewOrder(id, product, ip, now)
		data, err := json.Marshal(order)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode order")
		}

		created, err := r.insert(ctx, domain.OrderKey(id), data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrStorage, "failed to create order")
		}
		if created {
			return order, nil
		}

		r.logger.Warn("Purchase id collision, regenerating",
			logger.CtxField(ctx),
			logger.String("purchase_id", id),
			logger.Int("attempt", attempt))
	}

	return nil, errors.New(errors.ErrInternal, "could not allocate a unique purchase id")
}

// insert записывает ключ, только если его еще нет
func (r *KVOrderRepository) insert(ctx context.Context, key string, data []byte) (bool, error) {
	if cas, ok := r.store.(ConditionalStore); ok {
		return cas.CompareAndSwap(ctx, key, nil, data)
	}

	_, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		return false, nil
	case !stderrors.Is(err, ErrKeyNotFound):
		return false, err
	}
	return true, r.store.Set(ctx, key, data)
}

// Get возвращает заказ или ErrNotFound
func (r *KVOrderRepository) Get(ctx context.Context, purchaseID string) (*domain.Order, error) {
	raw, err := r.store.Get(ctx, domain.OrderKey(purchaseID))
	if err != nil {
		if stderrors.Is(err, ErrKeyNotFound) {
			return nil, errors.New(errors.ErrNotFound, "Order not found")
		}
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to read order")
	}

	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "order record is corrupted")
	}
	return &order, nil
}

// Patch меняет изменяемые поля заказа и проставляет updatedAt
func (r *KVOrderRepository) Patch(ctx context.Context, purchaseID string, patch domain.OrderPatch) (*domain.Order, error) {
	order, err := r.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	order.Apply(patch, r.now())

	data, err := json.Marshal(order)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode order")
	}
	if err := r.store.Set(ctx, domain.OrderKey(purchaseID), data); err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to update order")
	}
	return order, nil
}

// Delete удаляет заказ; отсутствие заказа не ошибка
func (r *KVOrderRepository) Delete(ctx context.Context, purchaseID string) error {
	if err := r.store.Delete(ctx, domain.OrderKey(purchaseID)); err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to delete order")
	}
	return nil
}

// List возвращает последние заказы: не больше MaxListLimit записей из последних
// MaxListScan ключей, по убыванию createdAt, при равенстве по ключу.
// Идентификаторы начинаются с даты, поэтому хвост ключей содержит самые новые заказы.
func (r *KVOrderRepository) List(ctx context.Context, limit int) ([]*domain.Order, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	keys, err := r.store.List(ctx, domain.OrderKeyPrefix, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to list orders")
	}
	if len(keys) > MaxListScan {
		keys = keys[len(keys)-MaxListScan:]
	}

	orders := make([]*domain.Order, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			if stderrors.Is(err, ErrKeyNotFound) {
				continue
			}
			return nil, errors.Wrap(err, errors.ErrStorage, "failed to read order")
		}

		var order domain.Order
		if err := json.Unmarshal(raw, &order); err != nil {
			r.logger.Warn("Skipping corrupted order record", logger.CtxField(ctx), logger.String("key", key), logger.Error(err))
			continue
		}
		orders = append(orders, &order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.PurchaseID < b.PurchaseID
	})

	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
