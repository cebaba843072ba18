package api

import (
	"context"
	"fmt"
	"time"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// Generator produces a completion for a fully assembled prompt.
// GeminiClient and AzureClient implement it, so the assistant pipeline can
// switch providers from configuration alone.
type Generator interface {
	// Generate sends one request. An empty completion is reported as
	// ErrEmptyResponse so callers can decide whether to retry.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Ensure both clients implement Generator
var _ Generator = (*GeminiClient)(nil)
var _ Generator = (*AzureClient)(nil)

// requestTimeout returns the configured per-request timeout for generators
func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	return constants.DefaultRequestTimeout
}

// GenerationParams are the sampling settings sent with each request
type GenerationParams struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// DefaultParams returns the settings used for conversational answers
func DefaultParams() GenerationParams {
	return GenerationParams{
		Temperature:     0.7,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// SummaryParams returns the settings used when condensing long answers
func SummaryParams() GenerationParams {
	return GenerationParams{
		Temperature:     0.3,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 200,
	}
}

// APIError represents a non-2xx reply from an upstream service
type APIError struct {
	StatusCode int
	Provider   string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewGenerator creates the Generator selected by cfg.Provider. The caller
// is expected to have run cfg.RequireGenerator.
func NewGenerator(cfg *config.Config) (Generator, error) {
	switch cfg.Provider {
	case "azure":
		if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
			return nil, config.ErrAzureNotFound
		}
		return NewAzureClient(cfg), nil
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, config.ErrGeminiKeyNotFound
		}
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.Provider)
	}
}
