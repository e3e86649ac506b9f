package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/productpicker/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultPageSize is the number of records requested per page
	DefaultPageSize = 10

	// maxBodyBytes bounds how much of a response body is read
	maxBodyBytes = 4 << 20
)

// StatusError carries the HTTP status of a non-2xx catalog response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", domain.ErrUpstream, e.Code)
	}
	return fmt.Sprintf("%s: status %d, body: %s", domain.ErrUpstream, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

// Client handles communication with the product search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	retry       RetryPolicy
	logger      *slog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithPageSize overrides the number of records per page
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithTimeout sets a per-request timeout. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit throttles outgoing requests. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryPolicy replaces the default no-retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.retry = p
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new catalog API client
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		pageSize:    DefaultPageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		retry:       NoRetry{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize returns the number of records requested per page
func (c *Client) PageSize() int {
	return c.pageSize
}

// SearchProducts fetches one page of products matching query. Pages with no
// data come back as an empty slice.
func (c *Client) SearchProducts(ctx context.Context, query string, page int) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(c.pageSize))
	reqURL := fmt.Sprintf("%s/products/search?%s", c.baseURL, params.Encode())

	for attempt := 1; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrNetwork, err)
		}

		products, err := c.searchOnce(ctx, reqURL)
		if err == nil {
			c.logger.Debug("catalog page fetched",
				slog.String("query", query),
				slog.Int("page", page),
				slog.Int("records", len(products)))
			return products, nil
		}

		delay, retry := c.retry.Backoff(attempt, err)
		c.logger.Warn("catalog request failed",
			slog.String("query", query),
			slog.Int("page", page),
			slog.Int("attempt", attempt),
			slog.Bool("retry", retry),
			slog.Any("err", err))
		if !retry {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err())
		case <-time.After(delay):
		}
	}
}

// searchOnce executes a single GET against the search endpoint
func (c *Client) searchOnce(ctx context.Context, reqURL string) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("User-Agent", "ProductPicker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	return decodePage(body)
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
