package realtime

import (
	"context"
	"errors"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// newsItems bounds how many news lines one utterance contributes
const newsItems = 2

// WeatherSource is satisfied by *api.WeatherClient
type WeatherSource interface {
	Current(ctx context.Context, city string) (*api.Weather, error)
}

// Searcher is satisfied by *api.SearchChain
type Searcher interface {
	News(ctx context.Context, query string) api.SearchOutcome
	Web(ctx context.Context, query string) api.SearchOutcome
}

// Gatherer runs the triggered providers for an utterance and tops the
// result up with a generic web search. Providers run sequentially in the
// fixed order time, weather, news, web.
type Gatherer struct {
	classifier *Classifier
	clock      *Clock
	weather    WeatherSource
	search     Searcher
	city       string
	min        int
	max        int
	log        *logging.FieldLogger
}

// NewGatherer wires the providers together
func NewGatherer(cfg *config.Config, classifier *Classifier, clock *Clock, weather WeatherSource, search Searcher) *Gatherer {
	g := &Gatherer{
		classifier: classifier,
		clock:      clock,
		weather:    weather,
		search:     search,
		city:       cfg.City,
		min:        cfg.MinFragments,
		max:        cfg.MaxFragments,
		log:        logging.Component("lookup"),
	}
	if g.city == "" {
		g.city = constants.DefaultCity
	}
	if g.max <= 0 {
		g.max = constants.DefaultMaxFragments
	}
	if g.min <= 0 || g.min > g.max {
		g.min = min(constants.DefaultMinFragments, g.max)
	}
	return g
}

// NewDefaultGatherer builds the standard provider set from configuration
func NewDefaultGatherer(cfg *config.Config) *Gatherer {
	return NewGatherer(cfg, NewClassifier(cfg), NewClock(cfg.Timezone), api.NewWeatherClient(cfg), NewDefaultSearchChain(cfg))
}

// NewDefaultSearchChain orders Naver, then Brave, then the Google scraper
func NewDefaultSearchChain(cfg *config.Config) *api.SearchChain {
	brave := api.NewBraveClient(cfg)
	brave.SetKeyRotationCallback(func(from, to, total int) {
		logging.Warn("Brave API key rotated", logging.Fields{"from": from, "to": to, "total": total})
	})
	return api.NewSearchChain(
		api.NewGoogleScraper(cfg.RequestTimeout),
		constants.DefaultMaxFragments,
		api.NewNaverClient(cfg),
		brave,
	)
}

// Classifier returns the classifier used for trigger decisions
func (g *Gatherer) Classifier() *Classifier {
	return g.classifier
}

// Gather returns between one and max fragments for utterance, ordered
// time, weather, news, then generic search.
func (g *Gatherer) Gather(ctx context.Context, utterance string) []Fragment {
	var fragments []Fragment
	triggers := g.classifier.Triggers(utterance)

	if triggers.Time {
		fragments = append(fragments, g.record(g.clock.Lookup()).Take(1)...)
	}
	if triggers.Weather {
		fragments = append(fragments, g.record(g.Weather(ctx)).Take(1)...)
	}
	if triggers.News {
		for _, line := range g.record(g.News(ctx, utterance)).Take(newsItems) {
			fragments = append(fragments, "뉴스: "+line)
		}
	}

	if len(fragments) < g.min {
		web := g.record(g.Web(ctx, utterance))
		fragments = append(fragments, web.Take(g.max-len(fragments))...)
	}

	if len(fragments) > g.max {
		fragments = fragments[:g.max]
	}
	return fragments
}

// Weather looks up the configured city
func (g *Gatherer) Weather(ctx context.Context) Result {
	res := Result{Provider: "weather"}
	if g.weather == nil {
		res.Status, res.Fragments = StatusUnavailable, []Fragment{WeatherNoKey}
		return res
	}

	w, err := g.weather.Current(ctx, g.city)
	var apiErr *api.APIError
	switch {
	case err == nil:
		res.Status, res.Fragments = StatusOK, []Fragment{w.Line()}
	case errors.Is(err, api.ErrWeatherKeyMissing):
		res.Status, res.Fragments = StatusUnavailable, []Fragment{WeatherNoKey}
	case errors.As(err, &apiErr):
		g.log.Warn("weather lookup rejected", logging.Fields{"status": apiErr.StatusCode, "error": err.Error()})
		res.Status, res.Fragments = StatusUnavailable, []Fragment{WeatherNoData}
	default:
		g.log.Warn("weather lookup failed", logging.Fields{"error": err.Error()})
		res.Status, res.Fragments = StatusTransientError, []Fragment{WeatherLookupErr}
	}
	return res
}

// News searches for keywords extracted from the utterance
func (g *Gatherer) News(ctx context.Context, utterance string) Result {
	if g.search == nil {
		return Result{Provider: "news", Status: StatusUnavailable}
	}
	return fromOutcome("news", g.search.News(ctx, ExtractNewsKeywords(utterance)))
}

// Web runs a generic search for the whole utterance
func (g *Gatherer) Web(ctx context.Context, query string) Result {
	if g.search == nil {
		return Result{Provider: "web", Status: StatusUnavailable, Fragments: []Fragment{api.NotFoundLine(query)}}
	}
	return fromOutcome("web", g.search.Web(ctx, query))
}

func fromOutcome(provider string, out api.SearchOutcome) Result {
	res := Result{Provider: provider, Fragments: out.Lines}
	switch out.Status {
	case api.OutcomeFound:
		res.Status = StatusOK
	case api.OutcomeFailed:
		res.Status = StatusTransientError
	default:
		res.Status = StatusUnavailable
	}
	if out.Source != "" {
		res.Provider = provider + "/" + out.Source
	}
	return res
}

func (g *Gatherer) record(r Result) Result {
	g.log.Debug("provider finished", logging.Fields{
		"provider":  r.Provider,
		"status":    r.Status.String(),
		"fragments": len(r.Fragments),
	})
	return r
}
