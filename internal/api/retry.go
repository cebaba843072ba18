package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quocvuong92/voice-assistant/internal/config"
)

// Search retry configuration, used while rotating through API keys
const (
	MaxRetryAttempts  = 5
	InitialBackoff    = 100 * time.Millisecond
	MaxBackoff        = 2 * time.Second
	BackoffMultiplier = 2.0
)

// ErrEmptyResponse is returned when a generator replies without any text
var ErrEmptyResponse = errors.New("empty response from model")

// RetryableStatusCodes are HTTP status codes that indicate a transient failure
var RetryableStatusCodes = []int{
	http.StatusTooManyRequests,     // 429 - Rate limited
	http.StatusServiceUnavailable,  // 503 - Service unavailable
	http.StatusGatewayTimeout,      // 504 - Gateway timeout
	http.StatusBadGateway,          // 502 - Bad gateway
	http.StatusInternalServerError, // 500 - Internal server error (transient)
}

// ShouldRotateKey checks if the error status code indicates we should try another key
func ShouldRotateKey(statusCode int) bool {
	for _, code := range config.RotatableErrorCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// ShouldRetryAPICall checks if the error status code indicates we should retry the API call
func ShouldRetryAPICall(statusCode int) bool {
	for _, code := range RetryableStatusCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// IsTransient reports whether err is worth another attempt: retryable
// status codes, network failures, request timeouts and empty completions.
// Cancellation of the caller's context is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ShouldRetryAPICall(apiErr.StatusCode)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// CalculateBackoff returns the backoff duration for a given attempt number
func CalculateBackoff(attempt int) time.Duration {
	backoff := InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * BackoffMultiplier)
		if backoff > MaxBackoff {
			backoff = MaxBackoff
			break
		}
	}
	return backoff
}

// RetryPolicy is a fixed-attempt, fixed-delay policy
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// OnRetry, when set, is called before each wait with the failed attempt (1-based)
	OnRetry func(attempt int, err error)
}

// RetryableFunc is a function that can be retried
type RetryableFunc[T any] func() (T, error)

// WithRetry runs fn up to policy.Attempts times, sleeping policy.Delay
// between attempts. Only IsTransient errors are retried; anything else is
// returned immediately.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, fn RetryableFunc[T]) (T, error) {
	var lastErr error
	var zero T

	attempts := max(policy.Attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("operation cancelled: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || ctx.Err() != nil {
			return zero, err
		}

		if attempt < attempts {
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, err)
			}
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("operation cancelled: %w", ctx.Err())
			case <-time.After(policy.Delay):
			}
		}
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, lastErr)
}
