// Package app wires configuration into the picker's infrastructure and usecase layers.
package app

import (
	"log/slog"

	"github.com/productpicker/backend/config"
	"github.com/productpicker/backend/internal/domain"
	"github.com/productpicker/backend/internal/infrastructure/cache"
	"github.com/productpicker/backend/internal/infrastructure/catalog"
	"github.com/productpicker/backend/internal/usecase"
)

// NewCatalog builds the catalog client described by cfg, wrapped in a page
// cache when cache.type is "memory". The returned func releases the cache.
func NewCatalog(cfg *config.Config, logger *slog.Logger) (domain.CatalogClient, func()) {
	client := catalog.NewClient(cfg.Catalog.APIKey, cfg.Catalog.BaseURL,
		catalog.WithPageSize(cfg.Catalog.PageSize),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithRateLimit(cfg.RateLimit.CatalogRPS, cfg.RateLimit.CatalogBurst),
		catalog.WithRetryPolicy(catalog.NewRetryPolicy(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay)),
		catalog.WithLogger(logger.With(slog.String("component", "catalog"))),
	)

	if cfg.Cache.Type != "memory" {
		return client, func() {}
	}

	memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval)
	logger.Info("catalog page cache enabled", slog.Duration("ttl", cfg.Cache.TTL))
	release := func() {
		logger.Debug("catalog page cache closed", slog.Int("entries", memoryCache.Size()))
		memoryCache.Close()
	}
	return catalog.NewCachedClient(client, memoryCache, cfg.Cache.TTL, logger), release
}

// NewPicker builds the picker service over the configured catalog.
// The returned func closes open sessions and releases the cache.
func NewPicker(cfg *config.Config, logger *slog.Logger) (*usecase.PickerService, func()) {
	client, closeCatalog := NewCatalog(cfg, logger)

	picker := usecase.NewPickerService(client, usecase.PickerServiceConfig{
		Paging: usecase.Paging{
			PageSize:   cfg.Catalog.PageSize,
			MaxRecords: cfg.Catalog.MaxRecords,
		},
	}, logger)

	return picker, func() {
		picker.Close()
		closeCatalog()
	}
}
