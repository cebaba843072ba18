package display

import (
	"fmt"
	"io"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/history"
)

// WriteHistory prints the given turns with short previews, numbered from 1
func WriteHistory(w io.Writer, total int, recent []history.Conversation) {
	fmt.Fprintf(w, "\n=== 대화 히스토리 (%d개) ===\n", total)
	if len(recent) == 0 {
		fmt.Fprintln(w, "저장된 대화 없음")
		return
	}
	for i, c := range recent {
		fmt.Fprintf(w, "%d. Q: %s\n", i+1, history.Preview(c.Question, 30))
		fmt.Fprintf(w, "   A: %s\n", history.Preview(c.Answer, 50))
	}
}

// WriteSearchHits prints history search results
func WriteSearchHits(w io.Writer, keyword string, hits []history.SearchHit) {
	if len(hits) == 0 {
		fmt.Fprintf(w, "'%s'에 대한 검색 결과가 없습니다.\n", keyword)
		return
	}
	fmt.Fprintf(w, "\n=== '%s' 검색 결과 (%d개) ===\n", keyword, len(hits))
	for _, h := range hits {
		fmt.Fprintf(w, "[%d] %s\n", h.Index+1, h.Timestamp)
		fmt.Fprintf(w, "  Q: %s\n", h.Question)
		fmt.Fprintf(w, "  A: %s\n", h.Answer)
	}
}

// WriteStats prints history statistics
func WriteStats(w io.Writer, st *history.Stats) {
	if st == nil {
		fmt.Fprintln(w, "저장된 대화 없음")
		return
	}
	fmt.Fprintln(w, "\n=== 히스토리 통계 ===")
	fmt.Fprintf(w, "총 대화 수: %d개\n", st.TotalConversations)
	fmt.Fprintf(w, "평균 질문 길이: %d자\n", st.AvgQuestionLength)
	fmt.Fprintf(w, "평균 답변 길이: %d자\n", st.AvgAnswerLength)
	fmt.Fprintf(w, "가장 활발한 날: %s (%d개)\n", st.MostActiveDate.Date, st.MostActiveDate.Count)
	fmt.Fprintln(w, "최근 활동:")
	for _, d := range st.RecentActivity {
		fmt.Fprintf(w, "  %s: %d개\n", d.Date, d.Count)
	}
}

// WriteCredentialStatus prints which credentials are configured. Missing
// required credentials are marked ❌, missing optional ones ⚠️.
func WriteCredentialStatus(w io.Writer, states []config.CredentialState) {
	fmt.Fprintln(w, "API 설정 상태:")
	for _, s := range states {
		mark := "✅"
		switch {
		case s.Present:
		case s.Required:
			mark = "❌"
		default:
			mark = "⚠️ "
		}
		fmt.Fprintf(w, "  %s %s\n", mark, s.Name)
	}
}
