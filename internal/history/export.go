package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// ErrUnsupportedFormat is returned by Export for anything but txt or json
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportInfo describes a JSON export
type ExportInfo struct {
	ID                 string    `json:"export_id"`
	ExportedAt         time.Time `json:"exported_at"`
	TotalConversations int       `json:"total_conversations"`
	AppVersion         string    `json:"app_version"`
}

type jsonExport struct {
	ExportInfo    ExportInfo     `json:"export_info"`
	Conversations []Conversation `json:"conversations"`
}

// Export writes the log to history_export_<timestamp>.<format> in dir and
// returns the file path. format is "txt" or "json".
func (s *Store) Export(format, dir string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "json" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if dir == "" {
		dir = "."
	}

	conversations := s.All()
	now := s.now()
	path := filepath.Join(dir, "history_export_"+now.Format("20060102_150405")+"."+format)

	if format == "json" {
		if conversations == nil {
			conversations = []Conversation{}
		}
		export := jsonExport{
			ExportInfo: ExportInfo{
				ID:                 uuid.New().String(),
				ExportedAt:         now,
				TotalConversations: len(conversations),
				AppVersion:         constants.AppVersion,
			},
			Conversations: conversations,
		}
		if err := writeJSON(path, export); err != nil {
			return "", fmt.Errorf("json export failed: %w", err)
		}
		return path, nil
	}

	if err := os.WriteFile(path, []byte(renderText(now, conversations)), 0644); err != nil {
		return "", fmt.Errorf("text export failed: %w", err)
	}
	return path, nil
}

func renderText(now time.Time, conversations []Conversation) string {
	rule := strings.Repeat("=", 50)
	sep := strings.Repeat("-", 50)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("대화 히스토리 내보내기\n")
	fmt.Fprintf(&b, "생성일시: %s\n", now.Format("2006년 01월 02일 15시 04분"))
	fmt.Fprintf(&b, "총 대화 수: %d개\n", len(conversations))
	b.WriteString(rule + "\n\n")

	for i, c := range conversations {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, c.Timestamp.Format(DisplayTime))
		fmt.Fprintf(&b, "Q: %s\n", c.Question)
		fmt.Fprintf(&b, "A: %s\n", c.Answer)
		b.WriteString(sep + "\n\n")
	}
	return b.String()
}

// DayCount is the number of turns on one date (YYYY-MM-DD)
type DayCount struct {
	Date  string
	Count int
}

// Stats aggregates the stored turns
type Stats struct {
	TotalConversations int
	AvgQuestionLength  int
	AvgAnswerLength    int
	MostActiveDate     DayCount
	RecentActivity     []DayCount // newest first, at most 7 dates
}

// Statistics returns aggregate numbers, or nil for an empty log
func (s *Store) Statistics() *Stats {
	conversations := s.All()
	if len(conversations) == 0 {
		return nil
	}

	var questions, answers int
	daily := make(map[string]int)
	for _, c := range conversations {
		questions += len([]rune(c.Question))
		answers += len([]rune(c.Answer))
		daily[c.Timestamp.Format("2006-01-02")]++
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	stats := &Stats{
		TotalConversations: len(conversations),
		AvgQuestionLength:  questions / len(conversations),
		AvgAnswerLength:    answers / len(conversations),
	}
	for _, d := range dates {
		// Ties go to the most recent date
		if daily[d] > stats.MostActiveDate.Count {
			stats.MostActiveDate = DayCount{Date: d, Count: daily[d]}
		}
	}
	for i, d := range dates {
		if i == 7 {
			break
		}
		stats.RecentActivity = append(stats.RecentActivity, DayCount{Date: d, Count: daily[d]})
	}
	return stats
}
