package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// Summarizer condenses long answers for speech
type Summarizer struct {
	generator api.Generator
	threshold int
	sentences int
	log       *logging.FieldLogger
}

// NewSummarizer creates a summarizer. generator may be nil, in which case
// long texts are truncated.
func NewSummarizer(cfg *config.Config, generator api.Generator) *Summarizer {
	s := &Summarizer{
		generator: generator,
		threshold: cfg.SummaryThreshold,
		sentences: cfg.SummarySentences,
		log:       logging.Component("summarizer"),
	}
	if s.threshold <= 0 {
		s.threshold = constants.DefaultSummaryThreshold
	}
	if s.sentences <= 0 {
		s.sentences = constants.DefaultSummarySentences
	}
	return s
}

// NeedsSummary reports whether text is longer than the threshold
func (s *Summarizer) NeedsSummary(text string) bool {
	return utf8.RuneCountInString(text) > s.threshold
}

// Summarize returns text unchanged when it is short enough. Otherwise it
// asks the model for a short summary and falls back to truncation.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if !s.NeedsSummary(text) {
		return text
	}
	if s.generator == nil {
		return s.fallback(text)
	}

	summary, err := s.generator.Generate(ctx, s.prompt(text), api.SummaryParams())
	if err != nil {
		s.log.Warn("summary failed, truncating", logging.Fields{"error": err.Error()})
		return s.fallback(text)
	}
	if summary = PostProcess(summary); summary == "" {
		return s.fallback(text)
	}
	return summary
}

func (s *Summarizer) prompt(text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음 텍스트를 %d문장으로 요약해주세요. \n", s.sentences)
	b.WriteString("음성으로 들었을 때 핵심 내용을 이해할 수 있도록 간결하고 명확하게 요약하세요:\n\n")
	b.WriteString(text)
	b.WriteString("\n\n요약:")
	return b.String()
}

func (s *Summarizer) fallback(text string) string {
	return history.Preview(text, constants.DefaultSummaryFallback)
}
