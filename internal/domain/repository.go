package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized values
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogClient searches the external product catalog one page at a time.
// A nil or empty slice means the page carried no data.
type CatalogClient interface {
	SearchProducts(ctx context.Context, query string, page int) ([]Product, error)
}
