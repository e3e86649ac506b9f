package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/productpicker/backend/internal/domain"
)

// CachedClient serves repeated page requests from a cache before asking the catalog
type CachedClient struct {
	next   domain.CatalogClient
	cache  domain.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClient wraps next with a TTL page cache
func NewCachedClient(next domain.CatalogClient, cache domain.CacheRepository, ttl time.Duration, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

// SearchProducts returns the cached page for (query, page) or fetches and stores it.
// Failures are never cached.
func (c *CachedClient) SearchProducts(ctx context.Context, query string, page int) ([]domain.Product, error) {
	key := cacheKey(query, page)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var products []domain.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			c.logger.Debug("catalog cache hit", slog.String("key", key))
			return products, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	products, err := c.next.SearchProducts(ctx, query, page)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(products)
	if err == nil {
		err = c.cache.Set(ctx, key, raw, c.ttl)
	}
	if err != nil {
		c.logger.Warn("catalog cache store failed", slog.String("key", key), slog.Any("err", err))
	}

	return products, nil
}

// cacheKey formats "catalog:search:{page}:{query}"; the query goes last so it may contain ':'
func cacheKey(query string, page int) string {
	return fmt.Sprintf("catalog:search:%d:%s", page, query)
}
