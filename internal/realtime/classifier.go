// Package realtime decides when an utterance needs live facts and gathers
// them from the clock, weather and search providers as short fragments.
package realtime

import (
	"strings"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// Triggers reports which provider groups an utterance asks for
type Triggers struct {
	Time    bool
	Weather bool
	News    bool
}

// Any reports whether at least one provider group was triggered
func (t Triggers) Any() bool {
	return t.Time || t.Weather || t.News
}

// Classifier matches utterances against keyword sets. It is pure and safe
// for concurrent use.
type Classifier struct {
	live    []string
	time    []string
	weather []string
	news    []string
}

// NewClassifier builds a classifier from the configured keyword sets,
// falling back to the defaults for any empty set.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		live:    normalize(cfg.LiveKeywords, constants.DefaultLiveKeywords),
		time:    normalize(cfg.TimeKeywords, constants.DefaultTimeKeywords),
		weather: normalize(cfg.WeatherKeywords, constants.DefaultWeatherKeywords),
		news:    normalize(cfg.NewsKeywords, constants.DefaultNewsKeywords),
	}
}

// RequiresLiveInfo reports whether the utterance contains any live keyword
// (case-insensitive substring match). Empty input never does.
func (c *Classifier) RequiresLiveInfo(utterance string) bool {
	return containsAny(strings.ToLower(utterance), c.live)
}

// Triggers reports which providers the utterance triggers
func (c *Classifier) Triggers(utterance string) Triggers {
	lower := strings.ToLower(utterance)
	return Triggers{
		Time:    containsAny(lower, c.time),
		Weather: containsAny(lower, c.weather),
		News:    containsAny(lower, c.news),
	}
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func normalize(keywords, fallback []string) []string {
	if len(keywords) == 0 {
		keywords = fallback
	}
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}
