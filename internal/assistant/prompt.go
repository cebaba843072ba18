package assistant

import (
	"fmt"
	"strings"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
)

// PromptOptions control how much history goes into a prompt
type PromptOptions struct {
	HistoryTurns   int
	AnswerBudget   int
	QuestionPrefix string
}

// DefaultPromptOptions returns three turns, 150-rune answers and "질문: "
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		HistoryTurns:   constants.DefaultHistoryTurns,
		AnswerBudget:   constants.DefaultAnswerBudget,
		QuestionPrefix: "질문: ",
	}
}

// PromptOptionsFrom reads the prompt settings from configuration
func PromptOptionsFrom(cfg *config.Config) PromptOptions {
	opts := DefaultPromptOptions()
	if cfg.HistoryTurns > 0 {
		opts.HistoryTurns = cfg.HistoryTurns
	}
	if cfg.AnswerBudget > 0 {
		opts.AnswerBudget = cfg.AnswerBudget
	}
	if cfg.QuestionPrefix != "" {
		opts.QuestionPrefix = cfg.QuestionPrefix
	}
	return opts
}

// BuildPrompt assembles recent history, live fragments and the question.
// Sections keep their input order and the question line always comes
// last; with no history and no fragments the prompt is the question line
// alone.
func BuildPrompt(question string, recent []history.Conversation, fragments []realtime.Fragment, opts PromptOptions) string {
	var b strings.Builder

	switch {
	case opts.HistoryTurns <= 0:
		recent = nil
	case len(recent) > opts.HistoryTurns:
		recent = recent[len(recent)-opts.HistoryTurns:]
	}
	if len(recent) > 0 {
		b.WriteString("이전 대화 내용:\n")
		for i, c := range recent {
			fmt.Fprintf(&b, "[%d] Q: %s\n", i+1, c.Question)
			fmt.Fprintf(&b, "    A: %s\n\n", history.Preview(c.Answer, opts.AnswerBudget))
		}
		b.WriteString("위 대화 내용을 참고해서 답변해주세요.\n\n")
	}

	if len(fragments) > 0 {
		b.WriteString("최신 정보:\n")
		for _, f := range fragments {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n위 정보를 참고해서 답변해주세요.\n\n")
	}

	b.WriteString(opts.QuestionPrefix)
	b.WriteString(question)
	return b.String()
}
