package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// DisplayTime is the timestamp layout used in summaries, searches and exports
const DisplayTime = "2006-01-02 15:04:05"

// Conversation is one stored question/answer turn. The length fields are
// rune counts cached at creation.
type Conversation struct {
	Timestamp      time.Time `json:"timestamp"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	QuestionLength int       `json:"question_length"`
	AnswerLength   int       `json:"answer_length"`
}

// NewConversation stamps a turn with t and caches its lengths
func NewConversation(t time.Time, question, answer string) Conversation {
	return Conversation{
		Timestamp:      t,
		Question:       question,
		Answer:         answer,
		QuestionLength: utf8.RuneCountInString(question),
		AnswerLength:   utf8.RuneCountInString(answer),
	}
}

// storedConversation detects missing required fields on load
type storedConversation struct {
	Timestamp      *string `json:"timestamp"`
	Question       *string `json:"question"`
	Answer         *string `json:"answer"`
	QuestionLength int     `json:"question_length"`
	AnswerLength   int     `json:"answer_length"`
}

// Timestamps are written as RFC 3339. Files from older builds carry naive
// ISO timestamps without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Store owns the conversation log. It is safe for one writer and
// concurrent readers.
type Store struct {
	mu            sync.RWMutex
	path          string
	backupDir     string
	max           int
	conversations []Conversation
	now           func() time.Time
	log           *logging.FieldLogger
}

// New creates an empty store. backupDir defaults to the directory of path.
func New(path, backupDir string, max int) *Store {
	if path == "" {
		path = constants.DefaultHistoryFile
	}
	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}
	if max <= 0 {
		max = constants.DefaultMaxHistory
	}
	return &Store{
		path:      path,
		backupDir: backupDir,
		max:       max,
		now:       time.Now,
		log:       logging.Component("history"),
	}
}

// Open creates a store from configuration and loads the existing file
func Open(cfg *config.Config) (*Store, error) {
	s := New(cfg.HistoryFile, cfg.BackupDir, cfg.MaxHistory)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the history file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the history file. A missing file yields an empty store and an
// unreadable or corrupt file is logged and ignored. Entries without a timestamp,
// question or answer are dropped.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("history file not found, starting empty", logging.Fields{"path": s.path})
		return nil
	}
	if err != nil {
		s.log.Warn("history file is unreadable, starting empty", logging.Fields{"path": s.path, "error": err.Error()})
		return nil
	}

	var stored []storedConversation
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.Warn("history file is corrupt, starting empty", logging.Fields{"path": s.path, "error": err.Error()})
		return nil
	}

	for _, sc := range stored {
		if sc.Timestamp == nil || sc.Question == nil || sc.Answer == nil {
			continue
		}
		ts, ok := parseTimestamp(*sc.Timestamp)
		if !ok {
			continue
		}
		s.conversations = append(s.conversations, Conversation{
			Timestamp:      ts,
			Question:       *sc.Question,
			Answer:         *sc.Answer,
			QuestionLength: sc.QuestionLength,
			AnswerLength:   sc.AnswerLength,
		})
	}
	if len(s.conversations) > s.max {
		s.conversations = s.conversations[len(s.conversations)-s.max:]
	}

	s.log.Info("history loaded", logging.Fields{"path": s.path, "conversations": len(s.conversations)})
	return nil
}

// Append records a turn, truncates to the configured maximum and persists.
// On a write failure the turn stays in memory and the error is returned.
func (s *Store) Append(question, answer string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := NewConversation(s.now(), question, answer)
	s.conversations = append(s.conversations, conv)
	if len(s.conversations) > s.max {
		s.conversations = append([]Conversation(nil), s.conversations[len(s.conversations)-s.max:]...)
	}
	return conv, s.save()
}

// Recent returns the last n turns in chronological order
func (s *Store) Recent(n int) []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(s.conversations) {
		n = len(s.conversations)
	}
	out := make([]Conversation, n)
	copy(out, s.conversations[len(s.conversations)-n:])
	return out
}

// All returns a snapshot of every stored turn
func (s *Store) All() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Conversation(nil), s.conversations...)
}

// Len returns the number of stored turns
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// clearBackup is the layout of the file written before clearing
type clearBackup struct {
	ClearedAt     time.Time      `json:"cleared_at"`
	Conversations []Conversation `json:"conversations"`
}

// Clear writes a timestamped backup of a non-empty log, then empties and
// persists it. A failed backup is logged and does not block the clear.
func (s *Store) Clear() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var backupPath string
	if len(s.conversations) > 0 {
		now := s.now()
		path := filepath.Join(s.backupDir, "history_backup_"+now.Format("20060102_150405")+".json")
		if err := writeJSON(path, clearBackup{ClearedAt: now, Conversations: s.conversations}); err != nil {
			s.log.Error("history backup failed", err, logging.Fields{"path": path})
		} else {
			backupPath = path
		}
	}

	s.conversations = nil
	return backupPath, s.save()
}

// Summary returns a one-line description of the log
func (s *Store) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.conversations) == 0 {
		return "저장된 대화 없음"
	}
	total := 0
	for _, c := range s.conversations {
		total += c.AnswerLength
	}
	latest := s.conversations[len(s.conversations)-1]
	return fmt.Sprintf("총 %d개 대화 | 최근: %s | 평균 답변: %d자",
		len(s.conversations), latest.Timestamp.Format(DisplayTime), total/len(s.conversations))
}

// SearchHit is one search match with shortened previews
type SearchHit struct {
	Index     int
	Timestamp string
	Question  string
	Answer    string
}

// Search finds turns whose question or answer contains keyword,
// ignoring case.
func (s *Store) Search(keyword string) []SearchHit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}

	var hits []SearchHit
	for i, c := range s.conversations {
		if !strings.Contains(strings.ToLower(c.Question), keyword) &&
			!strings.Contains(strings.ToLower(c.Answer), keyword) {
			continue
		}
		hits = append(hits, SearchHit{
			Index:     i,
			Timestamp: c.Timestamp.Format(DisplayTime),
			Question:  Preview(c.Question, 50),
			Answer:    Preview(c.Answer, 100),
		})
	}
	return hits
}

// Preview cuts s to n runes, appending "..." when something was cut
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// save persists the log. The previous file is copied to <path>.backup on a
// best-effort basis. Callers hold the write lock.
func (s *Store) save() error {
	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.path+".backup"); err != nil {
			s.log.Debug("history backup copy failed", logging.Fields{"error": err.Error()})
		}
	}

	conversations := s.conversations
	if conversations == nil {
		conversations = []Conversation{}
	}
	if err := writeJSON(s.path, conversations); err != nil {
		s.log.Error("history save failed", err, logging.Fields{"path": s.path})
		return err
	}
	return nil
}

// writeJSON writes v to a temp file and renames it over path
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
