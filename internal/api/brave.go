package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/quocvuong92/voice-assistant/internal/config"
)

// Brave Search endpoints
const (
	BraveWebURL  = "https://api.search.brave.com/res/v1/web/search"
	BraveNewsURL = "https://api.search.brave.com/res/v1/news/search"
)

// BraveResponse covers both the web and news response shapes
type BraveResponse struct {
	Web     BraveWebResults `json:"web"`
	Results []BraveResult   `json:"results"` // news endpoint
}

// BraveWebResults contains the web search results
type BraveWebResults struct {
	Results []BraveResult `json:"results"`
}

// BraveResult represents a single search result
type BraveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BraveClient is the Brave Search API client
type BraveClient struct {
	*BaseSearchClient
	webURL  string
	newsURL string
}

// Ensure BraveClient implements SearchClient
var _ SearchClient = (*BraveClient)(nil)

// NewBraveClient creates a new Brave Search client
func NewBraveClient(cfg *config.Config) *BraveClient {
	return &BraveClient{
		BaseSearchClient: NewBaseSearchClient(cfg.BraveKeys, "Brave", cfg.RequestTimeout),
		webURL:           BraveWebURL,
		newsURL:          BraveNewsURL,
	}
}

// Name implements SearchClient
func (c *BraveClient) Name() string {
	return c.ProviderName
}

// Configured implements SearchClient
func (c *BraveClient) Configured() bool {
	return c.KeyRotator.HasKeys()
}

// Search implements SearchClient, rotating keys on auth and quota errors
func (c *BraveClient) Search(ctx context.Context, query string, kind SearchKind, limit int) ([]SearchResult, error) {
	resp, err := SearchWithRetry(ctx, query, c.BaseSearchClient, func(ctx context.Context, q string) (*BraveResponse, error) {
		return c.doSearch(ctx, q, kind, limit)
	})
	if err != nil {
		return nil, err
	}
	return resp.ToSearchResults(kind), nil
}

func (c *BraveClient) doSearch(ctx context.Context, query string, kind SearchKind, limit int) (*BraveResponse, error) {
	endpoint := c.webURL
	if kind == SearchNews {
		endpoint = c.newsURL
	}

	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))
	params.Set("search_lang", "ko")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.GetCurrentKey())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Provider:   "brave",
			Message:    fmt.Sprintf("Brave API error: status code %d", resp.StatusCode),
		}
	}

	var braveResp BraveResponse
	if err := json.Unmarshal(body, &braveResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &braveResp, nil
}

// ToSearchResults converts a BraveResponse to SearchResults
func (r *BraveResponse) ToSearchResults(kind SearchKind) []SearchResult {
	raw, label := r.Web.Results, "브레이브검색"
	if kind == SearchNews {
		raw, label = r.Results, "브레이브뉴스"
	}

	results := make([]SearchResult, 0, len(raw))
	for _, res := range raw {
		title := CleanMarkup(res.Title)
		if title == "" {
			continue
		}
		results = append(results, SearchResult{
			Label:   label,
			Title:   title,
			URL:     res.URL,
			Content: CleanMarkup(res.Description),
		})
	}
	return results
}
