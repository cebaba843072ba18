// Package api provides the HTTP clients the assistant talks to.
//
// # Architecture
//
// ## Generators
//
//   - client.go: Generator interface, GenerationParams and NewGenerator
//   - gemini.go: Gemini generateContent client (default provider)
//   - azure.go: Azure OpenAI chat completions client
//
// ## Lookups
//
//   - search.go: SearchClient interface, SearchChain and fragment lines
//   - search_base.go: shared HTTP client, key rotation and markup cleanup
//   - naver.go: Naver news and web search
//   - brave.go: Brave news and web search with key rotation
//   - scrape.go: Google result page scraper, the last provider in the chain
//   - weather.go: OpenWeatherMap current conditions
//
// ## Retry and Error Handling
//
//   - retry.go: fixed-delay WithRetry, IsTransient and status code helpers
//
// Every non-2xx reply is an *APIError carrying the status code and
// provider name, so callers classify failures with errors.As.
//
// # Usage
//
//	gen, err := api.NewGenerator(cfg)
//	if err != nil {
//	    // handle error
//	}
//	text, err := api.WithRetry(ctx, api.RetryPolicy{Attempts: 3, Delay: time.Second},
//	    func() (string, error) { return gen.Generate(ctx, prompt, api.DefaultParams()) })
//
//	chain := api.NewSearchChain(api.NewGoogleScraper(cfg.RequestTimeout), 3,
//	    api.NewNaverClient(cfg), api.NewBraveClient(cfg))
//	outcome := chain.News(ctx, "경제")
package api
