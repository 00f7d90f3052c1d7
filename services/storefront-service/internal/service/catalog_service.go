package service

import (
	"context"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/metrics"
	"StorefrontPlatform/services/storefront-service/internal/repository"
)

// CatalogService чтение и редактирование конфигурации магазина
type CatalogService struct {
	configs repository.ConfigRepository
	logger  logger.Logger
	metrics *metrics.StoreMetrics
}

// NewCatalogService создает новый экземпляр CatalogService
func NewCatalogService(configs repository.ConfigRepository, log logger.Logger, m *metrics.StoreMetrics) *CatalogService {
	return &CatalogService{configs: configs, logger: log, metrics: m}
}

// PublicConfig конфигурация для витрины
func (s *CatalogService) PublicConfig(ctx context.Context) (*domain.Config, error) {
	return s.configs.GetOrInit(ctx)
}

// AdminConfig та же конфигурация для панели администратора
func (s *CatalogService) AdminConfig(ctx context.Context) (*domain.Config, error) {
	return s.configs.GetOrInit(ctx)
}

// UpdateConfig применяет правку и возвращает новую версию
func (s *CatalogService) UpdateConfig(ctx context.Context, edit *domain.ConfigEdit) (version int64, err error) {
	ctx, span := tracer.Start(ctx, "CatalogService.UpdateConfig")
	defer func() { endSpan(span, err); s.metrics.RecordConfigEdit(err) }()

	if edit == nil {
		edit = &domain.ConfigEdit{}
	}

	cfg, err := s.configs.ApplyEdit(ctx, edit)
	if err != nil {
		if !errors.HasCode(err, errors.ErrConflict) {
			s.logger.Error("Failed to update config", logger.CtxField(ctx), logger.Error(err))
		}
		return 0, err
	}

	s.logger.Info("Config updated",
		logger.CtxField(ctx),
		logger.Int64("version", cfg.Version),
		logger.Int("products", len(cfg.Products)))
	return cfg.Version, nil
}
