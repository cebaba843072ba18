package api

import (
	"context"
	"fmt"

	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// SearchKind selects between news and general web results
type SearchKind int

const (
	// SearchWeb asks for general web documents
	SearchWeb SearchKind = iota
	// SearchNews asks for recent news articles
	SearchNews
)

func (k SearchKind) String() string {
	if k == SearchNews {
		return "news"
	}
	return "web"
}

// SearchResult is one provider hit
type SearchResult struct {
	Label   string // rendered as a "[label] " prefix when set
	Title   string
	URL     string
	Content string
}

// Line renders the result as a single fact line
func (r SearchResult) Line() string {
	line := r.Title
	if r.Content != "" {
		line += " - " + r.Content
	}
	if r.Label != "" {
		line = "[" + r.Label + "] " + line
	}
	return line
}

// SearchClient is an API search provider
type SearchClient interface {
	Name() string
	// Configured reports whether the provider has credentials
	Configured() bool
	Search(ctx context.Context, query string, kind SearchKind, limit int) ([]SearchResult, error)
}

// OutcomeStatus classifies a search chain result
type OutcomeStatus int

const (
	// OutcomeFound means a provider returned at least one result
	OutcomeFound OutcomeStatus = iota
	// OutcomeNotFound means every provider answered but nothing matched
	OutcomeNotFound
	// OutcomeFailed means the last provider in the chain errored
	OutcomeFailed
)

// SearchOutcome is what the chain hands to the lookup layer
type SearchOutcome struct {
	Status OutcomeStatus
	Source string
	Lines  []string
}

// NotFoundLine is the fragment used when no provider has anything
func NotFoundLine(query string) string {
	return fmt.Sprintf("%s에 대한 정보를 찾을 수 없습니다.", query)
}

// FailedLine is the fragment used when the last provider errored
func FailedLine(query string) string {
	return fmt.Sprintf("%s 검색 중 오류 발생", query)
}

// SearchChain tries API providers in their fixed order, then the HTML
// scraper, then settles on a fixed not-found line.
type SearchChain struct {
	providers []SearchClient
	scraper   *GoogleScraper
	limit     int
	log       *logging.FieldLogger
}

// NewSearchChain builds a chain over providers (in priority order) and an
// optional scraper. limit bounds the results taken from any one provider.
func NewSearchChain(scraper *GoogleScraper, limit int, providers ...SearchClient) *SearchChain {
	if limit <= 0 {
		limit = 3
	}
	return &SearchChain{
		providers: providers,
		scraper:   scraper,
		limit:     limit,
		log:       logging.Component("search"),
	}
}

// Providers lists the provider names in chain order, scraper last
func (c *SearchChain) Providers() []string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		state := "off"
		if p.Configured() {
			state = "on"
		}
		names = append(names, p.Name()+" ("+state+")")
	}
	if c.scraper != nil {
		names = append(names, c.scraper.Name())
	}
	return names
}

// News searches news providers first and falls back to a web search for
// "<query> 뉴스".
func (c *SearchChain) News(ctx context.Context, query string) SearchOutcome {
	if out, ok := c.tryProviders(ctx, query, SearchNews); ok {
		return out
	}
	return c.Web(ctx, query+" 뉴스")
}

// Web searches web providers, then the scraper.
func (c *SearchChain) Web(ctx context.Context, query string) SearchOutcome {
	if out, ok := c.tryProviders(ctx, query, SearchWeb); ok {
		return out
	}

	if c.scraper == nil {
		return SearchOutcome{Status: OutcomeNotFound, Lines: []string{NotFoundLine(query)}}
	}

	titles, err := c.scraper.Search(ctx, query)
	if err != nil {
		c.log.Warn("scrape failed", logging.Fields{"query": query, "error": err.Error()})
		return SearchOutcome{Status: OutcomeFailed, Source: c.scraper.Name(), Lines: []string{FailedLine(query)}}
	}
	if len(titles) == 0 {
		return SearchOutcome{Status: OutcomeNotFound, Source: c.scraper.Name(), Lines: []string{NotFoundLine(query)}}
	}
	return SearchOutcome{Status: OutcomeFound, Source: c.scraper.Name(), Lines: lines(titles)}
}

func (c *SearchChain) tryProviders(ctx context.Context, query string, kind SearchKind) (SearchOutcome, bool) {
	for _, p := range c.providers {
		if !p.Configured() {
			continue
		}
		if ctx.Err() != nil {
			return SearchOutcome{}, false
		}

		results, err := p.Search(ctx, query, kind, c.limit)
		fields := logging.Fields{"provider": p.Name(), "kind": kind.String(), "query": query}
		if err != nil {
			fields["error"] = err.Error()
			c.log.Warn("provider failed", fields)
			continue
		}
		if len(results) == 0 {
			c.log.Debug("provider returned nothing", fields)
			continue
		}

		if len(results) > c.limit {
			results = results[:c.limit]
		}
		fields["results"] = len(results)
		c.log.Debug("provider answered", fields)
		return SearchOutcome{Status: OutcomeFound, Source: p.Name(), Lines: lines(results)}, true
	}
	return SearchOutcome{}, false
}

func lines(results []SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Line()
	}
	return out
}
