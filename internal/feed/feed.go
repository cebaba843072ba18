// Package feed carries presentation messages from the assistant pipeline to
// whatever renders them. The pipeline only ever holds a Sender, so a slow or
// missing consumer can never block a turn.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// Category tags a message for the presentation layer
type Category string

const (
	CategoryQuestion      Category = "question"
	CategoryAnswer        Category = "answer"
	CategorySummary       Category = "summary"
	CategoryStatus        Category = "status"
	CategorySearch        Category = "search"
	CategoryHistoryUpdate Category = "history_update"
)

// Message is one presentation event
type Message struct {
	Category Category
	Content  string
	At       time.Time
}

// Sender is the send side of a feed. A nil Sender discards everything.
type Sender interface {
	Send(category Category, content string)
}

// Feed owns a bounded message channel
type Feed struct {
	ch      chan Message
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
	now     func() time.Time
}

// New creates a feed holding up to buffer undelivered messages
func New(buffer int) *Feed {
	if buffer <= 0 {
		buffer = constants.DefaultFeedBuffer
	}
	return &Feed{ch: make(chan Message, buffer), now: time.Now}
}

// Send enqueues a message without blocking. When the buffer is full or the
// feed is closed the message is dropped and counted.
func (f *Feed) Send(category Category, content string) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		f.dropped.Add(1)
		return
	}
	select {
	case f.ch <- Message{Category: category, Content: content, At: f.now()}:
	default:
		f.dropped.Add(1)
	}
}

// Dropped returns how many messages were discarded
func (f *Feed) Dropped() int64 {
	return f.dropped.Load()
}

// Messages exposes the receive side
func (f *Feed) Messages() <-chan Message {
	return f.ch
}

// Close stops accepting messages. Run drains what is buffered and returns.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// Run calls handle for every message until the feed is closed or ctx is
// done.
func (f *Feed) Run(ctx context.Context, handle func(Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-f.ch:
			if !ok {
				return
			}
			handle(msg)
		}
	}
}

// Discard is a Sender that drops every message
type Discard struct{}

// Send implements Sender
func (Discard) Send(Category, string) {}

// Recorder is a Sender that keeps every message. It is safe for concurrent
// use and intended for tests and one-shot commands.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Send implements Sender
func (r *Recorder) Send(category Category, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Category: category, Content: content, At: time.Now()})
}

// Messages returns a snapshot of the recorded messages
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Of returns the contents recorded under category
func (r *Recorder) Of(category Category) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Category == category {
			out = append(out, m.Content)
		}
	}
	return out
}
