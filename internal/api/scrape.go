package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// GoogleSearchURL is the public result page scraped as a last resort
const GoogleSearchURL = "https://www.google.com/search"

const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Scrape limits
const (
	scrapeHeadings = 3  // only the first headings on the page are considered
	minTitleRunes  = 11 // shorter headings are navigation noise
)

// GoogleScraper pulls result titles out of the Google result page
type GoogleScraper struct {
	httpClient *http.Client
	searchURL  string
}

// NewGoogleScraper creates a scraper with the given request timeout
func NewGoogleScraper(timeout time.Duration) *GoogleScraper {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &GoogleScraper{
		httpClient: logging.NewHTTPClient(timeout),
		searchURL:  GoogleSearchURL,
	}
}

// Name returns the provider name used in logs and status output
func (s *GoogleScraper) Name() string {
	return "Google"
}

// Search returns up to three "[구글검색] <title>" results
func (s *GoogleScraper) Search(ctx context.Context, query string) ([]SearchResult, error) {
	reqURL, err := url.Parse(s.searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "ko")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Provider:   "google",
			Message:    fmt.Sprintf("Google search error: status code %d", resp.StatusCode),
		}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse result page: %w", err)
	}

	var results []SearchResult
	for _, title := range headings(doc, scrapeHeadings) {
		if utf8.RuneCountInString(title) >= minTitleRunes {
			results = append(results, SearchResult{Label: "구글검색", Title: title})
		}
	}
	return results, nil
}

// headings returns the text of the first limit <h3> elements in document order
func headings(doc *html.Node, limit int) []string {
	var found []string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.H3 {
			found = append(found, strings.TrimSpace(textContent(n)))
			return len(found) < limit
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return found
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}
