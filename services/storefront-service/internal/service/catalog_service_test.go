package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/domain"
	"StorefrontPlatform/services/storefront-service/internal/repository"
	"StorefrontPlatform/services/storefront-service/internal/repository/memory"
	"StorefrontPlatform/services/storefront-service/internal/service"
)

func TestCatalogService_PublicConfigSeeds(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.catalog.PublicConfig(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, cfg.Version)
	assert.Len(t, cfg.Products, 3)

	admin, err := f.catalog.AdminConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg, admin)
}

func TestCatalogService_UpdateConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	version, err := f.catalog.UpdateConfig(ctx, &domain.ConfigEdit{
		Brand: &domain.BrandEdit{Name: "New Brand"},
		Products: []domain.ProductEdit{
			{ID: "p-new", Name: "New", Price: "10"},
			{ID: "p-bad", Name: "Bad", Price: "-5"},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)

	cfg, err := f.catalog.PublicConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Brand", cfg.Brand.Name)
	require.Len(t, cfg.Products, 1)
	assert.Equal(t, "p-new", cfg.Products[0].ID)

	version, err = f.catalog.UpdateConfig(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, version)
}

func TestCatalogService_UpdateConfigStorageError(t *testing.T) {
	configs := repository.NewConfigRepository(brokenStore{memory.NewKVStore()}, domain.SeedDefaults{}, logger.NewNop())
	catalog := service.NewCatalogService(configs, logger.NewNop(), nil)

	_, err := catalog.UpdateConfig(context.Background(), &domain.ConfigEdit{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrStorage))
}

// brokenStore читает, но не пишет
type brokenStore struct {
	repository.KVStore
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New(errors.ErrStorage, "disk full")
}
