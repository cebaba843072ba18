package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/history"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"네\n", true},
		{"ㅇ", true},
		{"n\n", false},
		{"아니요\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			if got := Confirm(strings.NewReader(tt.input), &out, "정말 삭제할까요?"); got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if out.String() != "정말 삭제할까요? (y/n): " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		msg  feed.Message
		echo bool
		want string
	}{
		{feed.Message{Category: feed.CategoryStatus, Content: "생각 중..."}, false, "⏳ 생각 중..."},
		{feed.Message{Category: feed.CategorySearch, Content: "날씨: 맑음"}, false, "🔍 날씨: 맑음"},
		{feed.Message{Category: feed.CategorySummary, Content: "요약"}, false, "📋 요약: 요약"},
		{feed.Message{Category: feed.CategoryHistoryUpdate, Content: "총 1개 대화"}, false, "📝 총 1개 대화"},
		{feed.Message{Category: feed.CategoryQuestion, Content: "안녕"}, false, ""},
		{feed.Message{Category: feed.CategoryQuestion, Content: "안녕"}, true, "질문: 안녕"},
		{feed.Message{Category: feed.CategoryAnswer, Content: "네"}, false, ""},
		{feed.Message{Category: feed.CategoryAnswer, Content: "네"}, true, "📝 답변: 네"},
	}

	for _, tt := range tests {
		if got := FormatMessage(tt.msg, tt.echo); got != tt.want {
			t.Errorf("FormatMessage(%v, %v) = %q, want %q", tt.msg.Category, tt.echo, got, tt.want)
		}
	}
}

func TestPrinter_Handle(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, false)

	p.Handle(feed.Message{Category: feed.CategoryQuestion, Content: "안녕"})
	p.Handle(feed.Message{Category: feed.CategoryStatus, Content: "검색 중"})
	p.Handle(feed.Message{Category: feed.CategorySearch, Content: "결과"})

	want := "⏳ 검색 중\n🔍 결과\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRenderMarkdown_WithoutRenderer(t *testing.T) {
	rendererMu.Lock()
	saved := renderer
	renderer = nil
	rendererMu.Unlock()
	defer func() {
		rendererMu.Lock()
		renderer = saved
		rendererMu.Unlock()
	}()

	if got := RenderMarkdown("**굵게**"); got != "**굵게**" {
		t.Errorf("RenderMarkdown() = %q", got)
	}
}

func TestWriteHistory(t *testing.T) {
	var out bytes.Buffer
	recent := []history.Conversation{
		{Question: strings.Repeat("질", 31), Answer: "짧은 답"},
	}
	WriteHistory(&out, 5, recent)

	got := out.String()
	if !strings.Contains(got, "=== 대화 히스토리 (5개) ===") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "1. Q: "+strings.Repeat("질", 30)+"...") {
		t.Errorf("question preview wrong: %q", got)
	}
	if !strings.Contains(got, "   A: 짧은 답\n") {
		t.Errorf("answer preview wrong: %q", got)
	}

	out.Reset()
	WriteHistory(&out, 0, nil)
	if !strings.Contains(out.String(), "저장된 대화 없음") {
		t.Errorf("empty history output = %q", out.String())
	}
}

func TestWriteSearchHitsAndStats(t *testing.T) {
	var out bytes.Buffer
	WriteSearchHits(&out, "날씨", nil)
	if !strings.Contains(out.String(), "검색 결과가 없습니다") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	WriteSearchHits(&out, "날씨", []history.SearchHit{{Index: 2, Timestamp: "2024-03-04 09:05:07", Question: "날씨", Answer: "맑음"}})
	if !strings.Contains(out.String(), "[3] 2024-03-04 09:05:07") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	WriteStats(&out, &history.Stats{
		TotalConversations: 3,
		MostActiveDate:     history.DayCount{Date: "2024-03-02", Count: 2},
		RecentActivity:     []history.DayCount{{Date: "2024-03-02", Count: 2}},
	})
	if !strings.Contains(out.String(), "가장 활발한 날: 2024-03-02 (2개)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestWriteCredentialStatus(t *testing.T) {
	var out bytes.Buffer
	WriteCredentialStatus(&out, []config.CredentialState{
		{Name: "Gemini API", Present: true, Required: true},
		{Name: "Naver API"},
		{Name: "Azure OpenAI", Required: true},
	})

	got := out.String()
	for _, want := range []string{"✅ Gemini API", "⚠️  Naver API", "❌ Azure OpenAI"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
}

func TestSpinner_Update(t *testing.T) {
	sp := NewSpinner("생각 중...")
	sp.Update("검색 중...")
	if sp.s.Suffix != " 검색 중..." {
		t.Errorf("Suffix = %q", sp.s.Suffix)
	}
	if sp.Active() {
		t.Error("new spinner should not be active")
	}
}
