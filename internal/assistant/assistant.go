// Package assistant runs one conversational turn: it decides whether live
// facts are needed, assembles the prompt, generates and cleans the answer,
// records it and condenses long answers for speech.
package assistant

import (
	"context"
	"fmt"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/logging"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
)

// Gatherer collects live fragments for an utterance
type Gatherer interface {
	Gather(ctx context.Context, utterance string) []realtime.Fragment
}

// Turn is the outcome of one question
type Turn struct {
	Question  string
	Answer    string
	Summary   string // empty when the answer was short enough
	Fragments []realtime.Fragment
	Prompt    string
	StoreErr  error
}

// Spoken returns the text that should be read aloud
func (t Turn) Spoken() string {
	if t.Summary != "" {
		return t.Summary
	}
	return t.Answer
}

// Assistant wires the pipeline stages together
type Assistant struct {
	classifier *realtime.Classifier
	gatherer   Gatherer
	store      history.Log
	responder  *Responder
	summarizer *Summarizer
	sender     feed.Sender
	opts       PromptOptions
	log        *logging.FieldLogger
}

// New creates an assistant. gatherer and generator may be nil; sender
// defaults to discarding messages.
func New(cfg *config.Config, store history.Log, gatherer Gatherer, generator api.Generator, sender feed.Sender) *Assistant {
	if sender == nil {
		sender = feed.Discard{}
	}
	return &Assistant{
		classifier: realtime.NewClassifier(cfg),
		gatherer:   gatherer,
		store:      store,
		responder:  NewResponder(cfg, generator),
		summarizer: NewSummarizer(cfg, generator),
		sender:     sender,
		opts:       PromptOptionsFrom(cfg),
		log:        logging.Component("assistant"),
	}
}

// Store returns the conversation log
func (a *Assistant) Store() history.Log {
	return a.store
}

// Ask runs one turn. Blank input yields a zero Turn.
func (a *Assistant) Ask(ctx context.Context, utterance string) Turn {
	question := NormalizeInput(utterance)
	if question == "" {
		return Turn{}
	}
	turn := Turn{Question: question}
	a.sender.Send(feed.CategoryQuestion, question)

	if a.gatherer != nil && a.classifier.RequiresLiveInfo(question) {
		a.sender.Send(feed.CategoryStatus, "실시간 정보 검색 중...")
		turn.Fragments = a.gatherer.Gather(ctx, question)
		for _, f := range turn.Fragments {
			a.sender.Send(feed.CategorySearch, f)
		}
	}

	turn.Prompt = BuildPrompt(question, a.store.Recent(a.opts.HistoryTurns), turn.Fragments, a.opts)

	a.sender.Send(feed.CategoryStatus, "생각 중...")
	turn.Answer = a.responder.Respond(ctx, turn.Prompt)

	if _, err := a.store.Append(question, turn.Answer); err != nil {
		turn.StoreErr = err
		a.log.Error("failed to record turn", err)
		a.sender.Send(feed.CategoryStatus, fmt.Sprintf("히스토리 저장 오류: %v", err))
	} else {
		a.sender.Send(feed.CategoryHistoryUpdate, a.store.Summary())
	}
	a.sender.Send(feed.CategoryAnswer, turn.Answer)

	if a.summarizer.NeedsSummary(turn.Answer) {
		turn.Summary = a.summarizer.Summarize(ctx, turn.Answer)
		a.sender.Send(feed.CategorySummary, turn.Summary)
	}

	a.log.Debug("turn finished", logging.Fields{
		"fragments": len(turn.Fragments),
		"summary":   turn.Summary != "",
	})
	return turn
}
