package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
)

// KVConfigRepository хранит конфигурацию магазина в ключе "config"
type KVConfigRepository struct {
	store    KVStore
	defaults domain.SeedDefaults
	strict   bool
	now      func() time.Time
	logger   logger.Logger
}

// ConfigOption настройка KVConfigRepository
type ConfigOption func(*KVConfigRepository)

// WithStrictVersioning включает условную запись правок: параллельная правка
// завершается ErrConflict вместо молчаливой перезаписи
func WithStrictVersioning(strict bool) ConfigOption {
	return func(r *KVConfigRepository) { r.strict = strict }
}

// WithConfigClock подменяет источник времени
func WithConfigClock(now func() time.Time) ConfigOption {
	return func(r *KVConfigRepository) { r.now = now }
}

// NewConfigRepository создает репозиторий конфигурации
func NewConfigRepository(store KVStore, defaults domain.SeedDefaults, log logger.Logger, opts ...ConfigOption) *KVConfigRepository {
	r := &KVConfigRepository{
		store:    store,
		defaults: defaults,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrInit читает конфигурацию, при отсутствии записывает начальную.
// Гонка двух первых чтений безопасна: обе записи одинаковы по смыслу.
func (r *KVConfigRepository) GetOrInit(ctx context.Context) (*domain.Config, error) {
	cfg, _, err := r.load(ctx)
	return cfg, err
}

// ApplyEdit сливает правку с текущей конфигурацией и сохраняет результат с новой версией
func (r *KVConfigRepository) ApplyEdit(ctx context.Context, edit *domain.ConfigEdit) (*domain.Config, error) {
	old, snapshot, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	next := domain.ApplyEdit(old, edit, r.now())
	data, err := json.Marshal(next)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config")
	}

	if cas, ok := r.conditional(); ok {
		swapped, err := cas.CompareAndSwap(ctx, domain.ConfigKey, snapshot, data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrStorage, "failed to write config")
		}
		if !swapped {
			r.logger.Warn("Config edit rejected, record changed concurrently",
				logger.CtxField(ctx),
				logger.Int64("base_version", old.Version))
			return nil, errors.New(errors.ErrConflict, "Config was changed by another edit, reload and try again")
		}
		return next, nil
	}

	if err := r.store.Set(ctx, domain.ConfigKey, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to write config")
	}
	return next, nil
}

func (r *KVConfigRepository) conditional() (ConditionalStore, bool) {
	if !r.strict {
		return nil, false
	}
	cas, ok := r.store.(ConditionalStore)
	return cas, ok
}

// load возвращает конфигурацию и ее сырое значение для условной записи
func (r *KVConfigRepository) load(ctx context.Context) (*domain.Config, []byte, error) {
	raw, err := r.store.Get(ctx, domain.ConfigKey)
	if err == nil {
		var cfg domain.Config
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrStorage, "config record is corrupted")
		}
		return &cfg, raw, nil
	}
	if !stderrors.Is(err, ErrKeyNotFound) {
		return nil, nil, errors.Wrap(err, errors.ErrStorage, "failed to read config")
	}

	seed := domain.SeedConfig(r.defaults, r.now())
	data, err := json.Marshal(seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config")
	}

	if cas, ok := r.conditional(); ok {
		created, err := cas.CompareAndSwap(ctx, domain.ConfigKey, nil, data)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrStorage, "failed to seed config")
		}
		if !created {
			// Другой запрос успел записать конфигурацию первым
			return r.load(ctx)
		}
	} else if err := r.store.Set(ctx, domain.ConfigKey, data); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrStorage, "failed to seed config")
	}

	r.logger.Info("Store config initialized", logger.CtxField(ctx), logger.Int("products", len(seed.Products)))
	return seed, data, nil
}
