package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// GeminiBaseURL is the Generative Language REST endpoint
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// SafetyCategories are blocked at medium probability and above
var SafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GeminiRequest is the generateContent request body
type GeminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings,omitempty"`
}

// GeminiResponse is the subset of the generateContent reply we read
type GeminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Text joins the parts of the first candidate
func (r *GeminiResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

// GeminiClient calls the Gemini generateContent endpoint
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *logging.FieldLogger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{
		httpClient: logging.NewHTTPClient(requestTimeout(cfg)),
		baseURL:    GeminiBaseURL,
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		log:        logging.Component("gemini"),
	}
}

// SetBaseURL points the client at another endpoint (used by tests)
func (c *GeminiClient) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate implements Generator
func (c *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	reqBody := GeminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     params.Temperature,
			TopP:            params.TopP,
			TopK:            params.TopK,
			MaxOutputTokens: params.MaxOutputTokens,
		},
	}
	for _, category := range SafetyCategories {
		reqBody.SafetySettings = append(reqBody.SafetySettings, geminiSafetySetting{
			Category:  category,
			Threshold: "BLOCK_MEDIUM_AND_ABOVE",
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result GeminiResponse
	parseErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		errMsg := fmt.Sprintf("status code %d", resp.StatusCode)
		if parseErr == nil && result.Error.Message != "" {
			errMsg = result.Error.Message
		}
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Provider:   "gemini",
			Message:    fmt.Sprintf("Gemini API error: %s", errMsg),
		}
	}
	if parseErr != nil {
		return "", fmt.Errorf("failed to parse response: %w", parseErr)
	}

	text := result.Text()
	if text == "" {
		fields := logging.Fields{"model": c.model}
		if result.PromptFeedback.BlockReason != "" {
			fields["block_reason"] = result.PromptFeedback.BlockReason
		}
		if len(result.Candidates) > 0 {
			fields["finish_reason"] = result.Candidates[0].FinishReason
		}
		c.log.Debug("empty completion", fields)
		return "", ErrEmptyResponse
	}
	return text, nil
}
