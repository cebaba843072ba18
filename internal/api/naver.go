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

// NaverBaseURL is the Naver Open API search root
const NaverBaseURL = "https://openapi.naver.com/v1/search"

// NaverResponse represents a Naver search response
type NaverResponse struct {
	Total int         `json:"total"`
	Items []NaverItem `json:"items"`
}

// NaverItem is a single news or web document
type NaverItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate,omitempty"`
}

// NaverErrorResponse represents a Naver API error body
type NaverErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

// NaverClient is the Naver Search API client
type NaverClient struct {
	*BaseSearchClient
	baseURL      string
	clientID     string
	clientSecret string
}

// Ensure NaverClient implements SearchClient
var _ SearchClient = (*NaverClient)(nil)

// NewNaverClient creates a new Naver Search client
func NewNaverClient(cfg *config.Config) *NaverClient {
	return &NaverClient{
		BaseSearchClient: NewBaseSearchClient(nil, "Naver", cfg.RequestTimeout),
		baseURL:          NaverBaseURL,
		clientID:         cfg.NaverClientID,
		clientSecret:     cfg.NaverClientSecret,
	}
}

// Name implements SearchClient
func (c *NaverClient) Name() string {
	return c.ProviderName
}

// Configured implements SearchClient
func (c *NaverClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Search implements SearchClient. News is sorted by date, web by relevance.
func (c *NaverClient) Search(ctx context.Context, query string, kind SearchKind, limit int) ([]SearchResult, error) {
	resp, err := c.doSearch(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	return resp.ToSearchResults(kind), nil
}

func (c *NaverClient) doSearch(ctx context.Context, query string, kind SearchKind, limit int) (*NaverResponse, error) {
	endpoint, sort := "webkr.json", "sim"
	if kind == SearchNews {
		endpoint, sort = "news.json", "date"
	}

	reqURL, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	params.Set("sort", sort)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

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
		errMsg := fmt.Sprintf("status code %d", resp.StatusCode)
		var errResp NaverErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorMessage != "" {
			errMsg = errResp.ErrorMessage
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Provider:   "naver",
			Message:    fmt.Sprintf("Naver API error: %s", errMsg),
		}
	}

	var naverResp NaverResponse
	if err := json.Unmarshal(body, &naverResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &naverResp, nil
}

// ToSearchResults converts items, stripping Naver's highlight markup.
// News results carry the 네이버뉴스 label.
func (r *NaverResponse) ToSearchResults(kind SearchKind) []SearchResult {
	label := ""
	if kind == SearchNews {
		label = "네이버뉴스"
	}
	results := make([]SearchResult, 0, len(r.Items))
	for _, item := range r.Items {
		title := CleanMarkup(item.Title)
		if title == "" {
			continue
		}
		results = append(results, SearchResult{
			Label:   label,
			Title:   title,
			URL:     item.Link,
			Content: CleanMarkup(item.Description),
		})
	}
	return results
}
