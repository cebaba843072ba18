package api

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// KeyRotationCallback is notified with 1-based key positions after a rotation
type KeyRotationCallback func(fromIndex, toIndex, totalKeys int)

// BaseSearchClient provides common functionality for search clients
type BaseSearchClient struct {
	HTTPClient    *http.Client
	KeyRotator    *config.KeyRotator
	ProviderName  string
	OnKeyRotation KeyRotationCallback
}

// NewBaseSearchClient creates a new base search client. A zero timeout
// selects constants.DefaultRequestTimeout.
func NewBaseSearchClient(keyRotator *config.KeyRotator, providerName string, timeout time.Duration) *BaseSearchClient {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	if keyRotator == nil {
		keyRotator = config.NewKeyRotatorFromKeys(nil)
	}
	return &BaseSearchClient{
		HTTPClient:   logging.NewHTTPClient(timeout),
		KeyRotator:   keyRotator,
		ProviderName: providerName,
	}
}

// SetKeyRotationCallback sets a callback function for key rotation events
func (b *BaseSearchClient) SetKeyRotationCallback(callback KeyRotationCallback) {
	b.OnKeyRotation = callback
}

// GetCurrentKey returns the current API key
func (b *BaseSearchClient) GetCurrentKey() string {
	return b.KeyRotator.GetCurrentKey()
}

// RotateKey attempts to switch to the next available API key and notifies via callback
func (b *BaseSearchClient) RotateKey() error {
	oldIndex := b.KeyRotator.GetCurrentIndex()
	if _, err := b.KeyRotator.Rotate(); err != nil {
		return err
	}

	if b.OnKeyRotation != nil {
		b.OnKeyRotation(oldIndex+1, b.KeyRotator.GetCurrentIndex()+1, b.KeyRotator.GetKeyCount())
	}
	return nil
}

// SearchFunc is a function type for performing a single search attempt
type SearchFunc[T any] func(ctx context.Context, query string) (T, error)

// SearchWithRetry performs search with automatic key rotation on 401/403/429.
// Other errors, and any error when only one key is configured, are returned
// as they are.
func SearchWithRetry[T any](
	ctx context.Context,
	query string,
	base *BaseSearchClient,
	doSearch SearchFunc[T],
) (T, error) {
	var zero T

	if base.KeyRotator.GetKeyCount() <= 1 {
		return doSearch(ctx, query)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("search cancelled: %w", err)
		}

		resp, err := doSearch(ctx, query)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !ShouldRotateKey(apiErr.StatusCode) {
			return zero, err
		}

		if rotateErr := base.RotateKey(); rotateErr != nil {
			return zero, fmt.Errorf("%w (no more %s API keys available)", err, base.ProviderName)
		}

		if attempt < MaxRetryAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("search cancelled: %w", ctx.Err())
			case <-time.After(CalculateBackoff(attempt)):
			}
		}
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", MaxRetryAttempts, lastErr)
}

var markupPolicy = bluemonday.StrictPolicy()

// CleanMarkup strips tags such as Naver's <b> highlights and decodes entities
func CleanMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(markupPolicy.Sanitize(s)))
}
