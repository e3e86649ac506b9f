package catalog

import (
	"errors"
	"net/http"
	"time"

	"github.com/productpicker/backend/internal/domain"
)

// RetryPolicy decides whether a failed attempt is retried. attempt is 1-based.
type RetryPolicy interface {
	Backoff(attempt int, err error) (delay time.Duration, retry bool)
}

// NoRetry surfaces the first failure to the caller
type NoRetry struct{}

func (NoRetry) Backoff(int, error) (time.Duration, bool) { return 0, false }

// ExponentialBackoff retries transient failures (transport errors, 429 and 5xx)
// doubling the delay after each attempt.
type ExponentialBackoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p ExponentialBackoff) Backoff(attempt int, err error) (time.Duration, bool) {
	if attempt >= p.MaxAttempts || !isRetryable(err) {
		return 0, false
	}
	return exponentialBackoff(p.BaseDelay, attempt), true
}

// NewRetryPolicy returns NoRetry for a single attempt and exponential backoff otherwise
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts <= 1 {
		return NoRetry{}
	}
	return ExponentialBackoff{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// exponentialBackoff returns base * 2^(attempt-1)
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	return errors.Is(err, domain.ErrNetwork)
}
