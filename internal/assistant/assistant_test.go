package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
)

// fakeGenerator replays scripted replies and records prompts
type fakeGenerator struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	params  []api.GenerationParams
}

type reply struct {
	text string
	err  error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, params api.GenerationParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.params = append(g.params, params)
	if len(g.replies) == 0 {
		return "", api.ErrEmptyResponse
	}
	r := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return r.text, r.err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func testConfig() *config.Config {
	return &config.Config{
		RetryAttempts:    3,
		RetryDelay:       time.Millisecond,
		HistoryTurns:     3,
		AnswerBudget:     150,
		QuestionPrefix:   "질문: ",
		MinFragments:     2,
		MaxFragments:     3,
		City:             "Seoul",
		SummaryThreshold: 300,
		SummarySentences: 2,
	}
}

func newStore(t *testing.T) *history.Store {
	t.Helper()
	return history.New(filepath.Join(t.TempDir(), "history.json"), "", 10)
}

var transientErr = &api.APIError{StatusCode: 503, Provider: "gemini", Message: "unavailable"}

// =============================================================================
// Prompt assembly
// =============================================================================

func TestBuildPrompt_QuestionOnly(t *testing.T) {
	got := BuildPrompt("안녕", nil, nil, DefaultPromptOptions())
	if got != "질문: 안녕" {
		t.Errorf("BuildPrompt() = %q, want %q", got, "질문: 안녕")
	}
}

func TestBuildPrompt_HistoryAndFragments(t *testing.T) {
	long := strings.Repeat("가", 160)
	recent := []history.Conversation{
		{Question: "q0", Answer: "dropped"},
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: long},
		{Question: "q3", Answer: "a3"},
	}
	fragments := []realtime.Fragment{"현재 시간: 오전", "날씨: 맑음"}

	got := BuildPrompt("지금 날씨", recent, fragments, DefaultPromptOptions())

	want := "이전 대화 내용:\n" +
		"[1] Q: q1\n    A: a1\n\n" +
		"[2] Q: q2\n    A: " + strings.Repeat("가", 150) + "...\n\n" +
		"[3] Q: q3\n    A: a3\n\n" +
		"위 대화 내용을 참고해서 답변해주세요.\n\n" +
		"최신 정보:\n- 현재 시간: 오전\n- 날씨: 맑음\n\n위 정보를 참고해서 답변해주세요.\n\n" +
		"질문: 지금 날씨"
	if got != want {
		t.Errorf("BuildPrompt() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPrompt_AlwaysEndsWithQuestion(t *testing.T) {
	inputs := []struct {
		recent    []history.Conversation
		fragments []realtime.Fragment
		opts      PromptOptions
	}{
		{nil, nil, DefaultPromptOptions()},
		{[]history.Conversation{{Question: "a", Answer: "b"}}, nil, DefaultPromptOptions()},
		{nil, []realtime.Fragment{"x"}, DefaultPromptOptions()},
		{[]history.Conversation{{Question: "a", Answer: "b"}}, []realtime.Fragment{"x"}, PromptOptions{HistoryTurns: 0, QuestionPrefix: "질문: "}},
		{[]history.Conversation{{Question: "a", Answer: "b"}}, nil, PromptOptions{HistoryTurns: -1, QuestionPrefix: "질문: "}},
	}

	for i, in := range inputs {
		got := BuildPrompt("마지막 질문", in.recent, in.fragments, in.opts)
		if !strings.HasSuffix(got, "질문: 마지막 질문") {
			t.Errorf("case %d: prompt does not end with the question line: %q", i, got)
		}
	}
}

func TestPromptOptionsFrom(t *testing.T) {
	cfg := &config.Config{HistoryTurns: 5, QuestionPrefix: "Q: "}
	opts := PromptOptionsFrom(cfg)
	if opts.HistoryTurns != 5 || opts.AnswerBudget != 150 || opts.QuestionPrefix != "Q: " {
		t.Errorf("PromptOptionsFrom() = %+v", opts)
	}
}

// =============================================================================
// Post-processing
// =============================================================================

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "**중요** 내용", "중요 내용"},
		{"italic", "*기울임* 글씨", "기울임 글씨"},
		{"code", "`go run` 실행", "go run 실행"},
		{"newlines", "a\n\n\n\nb", "a\n\nb"},
		{"trim", "  답변  \n", "답변"},
		{"plain", "그대로", "그대로"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PostProcess(tt.input); got != tt.want {
				t.Errorf("PostProcess(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeInput(t *testing.T) {
	if got := NormalizeInput("  안녕\xff  \n"); got != "안녕" {
		t.Errorf("NormalizeInput() = %q", got)
	}
}

// =============================================================================
// Responder and summarizer
// =============================================================================

func TestResponder_Success(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: "**안녕하세요**"}}}
	r := NewResponder(testConfig(), gen)

	got := r.Respond(context.Background(), "질문: 안녕")
	if got != "안녕하세요" {
		t.Errorf("Respond() = %q", got)
	}
	if !strings.HasSuffix(gen.prompts[0], "사용자 질문: 질문: 안녕\n\n답변:") {
		t.Errorf("prompt = %q", gen.prompts[0])
	}
	if gen.params[0] != api.DefaultParams() {
		t.Errorf("params = %+v", gen.params[0])
	}
}

func TestResponder_RetriesThenFails(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: transientErr}}}
	r := NewResponder(testConfig(), gen)

	got := r.Respond(context.Background(), "질문: x")
	if got != "죄송합니다. 3번 시도 후에도 응답을 생성할 수 없습니다." {
		t.Errorf("Respond() = %q", got)
	}
	if gen.calls() != 3 {
		t.Errorf("generator called %d times, want 3", gen.calls())
	}
}

func TestResponder_RetriesEmpty(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: api.ErrEmptyResponse}, {text: "됐다"}}}
	r := NewResponder(testConfig(), gen)

	if got := r.Respond(context.Background(), "질문: x"); got != "됐다" {
		t.Errorf("Respond() = %q", got)
	}
	if gen.calls() != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls())
	}
}

func TestResponder_StopsOnPermanentError(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: &api.APIError{StatusCode: 400, Message: "bad request"}}}}
	r := NewResponder(testConfig(), gen)

	if got := r.Respond(context.Background(), "질문: x"); got != FailureText(3) {
		t.Errorf("Respond() = %q", got)
	}
	if gen.calls() != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls())
	}
}

func TestResponder_NoGenerator(t *testing.T) {
	r := NewResponder(testConfig(), nil)
	if r.Ready() {
		t.Error("Ready() should be false")
	}
	if got := r.Respond(context.Background(), "x"); got != NotInitializedText {
		t.Errorf("Respond() = %q", got)
	}
}

func TestSummarizer(t *testing.T) {
	long := strings.Repeat("나", 301)

	t.Run("short text unchanged", func(t *testing.T) {
		gen := &fakeGenerator{}
		s := NewSummarizer(testConfig(), gen)
		if got := s.Summarize(context.Background(), strings.Repeat("나", 300)); got != strings.Repeat("나", 300) {
			t.Error("300-rune text should not be summarized")
		}
		if gen.calls() != 0 {
			t.Error("generator should not be called")
		}
	})

	t.Run("model summary", func(t *testing.T) {
		gen := &fakeGenerator{replies: []reply{{text: "요약 *문장*."}}}
		s := NewSummarizer(testConfig(), gen)
		if got := s.Summarize(context.Background(), long); got != "요약 문장." {
			t.Errorf("Summarize() = %q", got)
		}
		if gen.params[0] != api.SummaryParams() || !strings.Contains(gen.prompts[0], "2문장으로 요약") {
			t.Errorf("request = %+v %q", gen.params[0], gen.prompts[0])
		}
	})

	t.Run("fallback on error", func(t *testing.T) {
		gen := &fakeGenerator{replies: []reply{{err: errors.New("boom")}}}
		s := NewSummarizer(testConfig(), gen)
		if got := s.Summarize(context.Background(), long); got != strings.Repeat("나", 200)+"..." {
			t.Errorf("Summarize() = %q", got)
		}
	})

	t.Run("fallback without generator", func(t *testing.T) {
		s := NewSummarizer(testConfig(), nil)
		if got := s.Summarize(context.Background(), long); got != strings.Repeat("나", 200)+"..." {
			t.Errorf("Summarize() = %q", got)
		}
	})
}

// =============================================================================
// Turn pipeline
// =============================================================================

type fakeGatherer struct {
	fragments []realtime.Fragment
	calls     int
}

func (g *fakeGatherer) Gather(ctx context.Context, utterance string) []realtime.Fragment {
	g.calls++
	return g.fragments
}

func TestAsk_GreetingScenario(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: "안녕하세요! 무엇을 도와드릴까요?"}}}
	gatherer := &fakeGatherer{}
	store := newStore(t)
	rec := &feed.Recorder{}
	a := New(testConfig(), store, gatherer, gen, rec)

	turn := a.Ask(context.Background(), "안녕")

	if turn.Prompt != "질문: 안녕" {
		t.Errorf("Prompt = %q", turn.Prompt)
	}
	if gatherer.calls != 0 {
		t.Error("greeting should not trigger live lookups")
	}
	if store.Len() != 1 || store.All()[0].Answer != turn.Answer {
		t.Error("turn not recorded")
	}
	if turn.Summary != "" || turn.Spoken() != turn.Answer {
		t.Error("short answer should be spoken unchanged")
	}
	if got := rec.Of(feed.CategoryQuestion); len(got) != 1 || got[0] != "안녕" {
		t.Errorf("question messages = %v", got)
	}
	if got := rec.Of(feed.CategoryHistoryUpdate); len(got) != 1 || !strings.HasPrefix(got[0], "총 1개 대화") {
		t.Errorf("history messages = %v", got)
	}
}

type fakeWeather struct{}

func (fakeWeather) Current(ctx context.Context, city string) (*api.Weather, error) {
	return &api.Weather{City: city, Temperature: 12.5, FeelsLike: 11, Humidity: 40, Description: "맑음"}, nil
}

type fakeSearch struct{}

func (fakeSearch) News(ctx context.Context, q string) api.SearchOutcome {
	return api.SearchOutcome{Status: api.OutcomeNotFound, Lines: []string{api.NotFoundLine(q)}}
}

func (fakeSearch) Web(ctx context.Context, q string) api.SearchOutcome {
	return api.SearchOutcome{Status: api.OutcomeFound, Source: "Google", Lines: []string{"[구글검색] 서울 날씨 예보"}}
}

func TestAsk_WeatherScenario(t *testing.T) {
	cfg := testConfig()
	gatherer := realtime.NewGatherer(cfg, realtime.NewClassifier(cfg), realtime.NewClock("UTC"), fakeWeather{}, fakeSearch{})
	gen := &fakeGenerator{replies: []reply{{text: "서울은 맑고 12.5도입니다."}}}
	rec := &feed.Recorder{}
	a := New(cfg, newStore(t), gatherer, gen, rec)

	turn := a.Ask(context.Background(), "오늘 서울 날씨 어때?")

	if len(turn.Fragments) < 1 || len(turn.Fragments) > 3 {
		t.Fatalf("fragments = %v", turn.Fragments)
	}
	weather := regexp.MustCompile(`온도: \d+(\.\d+)?°C, 맑음`)
	idx := weather.FindStringIndex(turn.Prompt)
	if idx == nil {
		t.Fatalf("prompt has no weather line: %q", turn.Prompt)
	}
	if idx[0] > strings.Index(turn.Prompt, "질문: 오늘 서울 날씨 어때?") {
		t.Error("weather line must precede the question")
	}
	if !strings.HasSuffix(turn.Prompt, "질문: 오늘 서울 날씨 어때?") {
		t.Errorf("prompt ends with %q", turn.Prompt[len(turn.Prompt)-20:])
	}
	if len(rec.Of(feed.CategorySearch)) != len(turn.Fragments) {
		t.Error("each fragment should be announced")
	}
}

func TestAsk_FailuresStoredAsAnswer(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: transientErr}}}
	store := newStore(t)
	a := New(testConfig(), store, nil, gen, nil)

	turn := a.Ask(context.Background(), "안녕")

	want := "죄송합니다. 3번 시도 후에도 응답을 생성할 수 없습니다."
	if turn.Answer != want {
		t.Errorf("Answer = %q", turn.Answer)
	}
	if got := store.All(); len(got) != 1 || got[0].Answer != want {
		t.Errorf("stored = %+v", got)
	}
}

func TestAsk_LongAnswerSummarized(t *testing.T) {
	long := strings.Repeat("긴 답변입니다. ", 40)
	gen := &fakeGenerator{replies: []reply{{text: long}, {text: "짧은 요약."}}}
	rec := &feed.Recorder{}
	a := New(testConfig(), newStore(t), nil, gen, rec)

	turn := a.Ask(context.Background(), "설명해줘")

	if turn.Summary != "짧은 요약." || turn.Spoken() != "짧은 요약." {
		t.Errorf("Summary = %q", turn.Summary)
	}
	if got := rec.Of(feed.CategorySummary); len(got) != 1 {
		t.Errorf("summary messages = %v", got)
	}
}

type failingStore struct{ history.Log }

func (failingStore) Append(q, a string) (history.Conversation, error) {
	return history.Conversation{}, errors.New("disk full")
}

func (failingStore) Recent(n int) []history.Conversation { return nil }

func TestAsk_StoreErrorReported(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: "답"}}}
	rec := &feed.Recorder{}
	a := New(testConfig(), failingStore{}, nil, gen, rec)

	turn := a.Ask(context.Background(), "질문")

	if turn.Answer != "답" || turn.StoreErr == nil {
		t.Errorf("turn = %+v", turn)
	}
	found := false
	for _, s := range rec.Of(feed.CategoryStatus) {
		if strings.Contains(s, "disk full") {
			found = true
		}
	}
	if !found {
		t.Error("store error should be reported as a status message")
	}
}

func TestAsk_BlankInput(t *testing.T) {
	gen := &fakeGenerator{}
	a := New(testConfig(), newStore(t), nil, gen, nil)
	if turn := a.Ask(context.Background(), "   "); turn.Question != "" || gen.calls() != 0 {
		t.Errorf("blank input produced %+v", turn)
	}
}
