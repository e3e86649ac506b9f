package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/productpicker/backend/config"
	"github.com/productpicker/backend/internal/infrastructure/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL, cacheType string) *config.Config {
	return &config.Config{
		Catalog:   config.CatalogConfig{APIKey: "k", BaseURL: baseURL, PageSize: 10, MaxRecords: 1000},
		Retry:     config.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
		Cache:     config.CacheConfig{Type: cacheType, TTL: time.Minute},
		RateLimit: config.RateLimitConfig{CatalogRPS: 0},
	}
}

func TestNewCatalog(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, release := NewCatalog(testConfig("http://example.invalid", "none"), logger)
	defer release()
	assert.IsType(t, &catalog.Client{}, client)

	cached, release := NewCatalog(testConfig("http://example.invalid", "memory"), logger)
	defer release()
	assert.IsType(t, &catalog.CachedClient{}, cached)
}

func TestNewPicker_EndToEnd(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"id":7,"title":"Lamp","variants":[{"id":70,"title":"Red","price":"12.50"}]}]`))
	}))
	defer server.Close()

	picker, release := NewPicker(testConfig(server.URL, "memory"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer release()

	rowID := picker.Rows()[0].ID
	sess, err := picker.Open(context.Background(), rowID)
	require.NoError(t, err)
	sess.Wait()

	require.NoError(t, picker.ChooseProduct(rowID, 7, true))
	row, err := picker.Confirm(rowID)
	require.NoError(t, err)
	require.NotNil(t, row.Selection)
	assert.Equal(t, "12.50", row.Selection.Variants[0].Price.StringFixed(2))

	sess, err = picker.Open(context.Background(), rowID)
	require.NoError(t, err)
	require.NoError(t, picker.SetQuery(rowID, "lamp"))
	sess.Wait()
	require.NoError(t, picker.SetQuery(rowID, ""))
	sess.Wait()

	// the empty query's first page comes from the page cache
	assert.Equal(t, int32(2), hits.Load())
	assert.Len(t, sess.View().Products, 1)
}
