package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/quocvuong92/voice-assistant/internal/feed"
)

// Printer consumes feed messages. Status messages update the spinner when
// one is running; other notices are printed as lines.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *Spinner
	echo    bool
}

// NewPrinter creates a printer writing to out. With echo set, questions
// and answers are printed too.
func NewPrinter(out io.Writer, echo bool) *Printer {
	return &Printer{out: out, echo: echo}
}

// SetSpinner attaches the spinner for the running turn, or detaches it
// with nil
func (p *Printer) SetSpinner(sp *Spinner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner = sp
}

// Handle renders one message
func (p *Printer) Handle(m feed.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m.Category == feed.CategoryStatus && p.spinner != nil && p.spinner.Active() {
		p.spinner.Update(m.Content)
		return
	}

	line := FormatMessage(m, p.echo)
	if line == "" {
		return
	}

	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
		defer p.spinner.Start()
	}
	fmt.Fprintln(p.out, line)
}

// FormatMessage returns the terminal line for m, or "" when the category
// is not shown. Questions and answers are only shown with echo.
func FormatMessage(m feed.Message, echo bool) string {
	switch m.Category {
	case feed.CategoryStatus:
		return "⏳ " + m.Content
	case feed.CategorySearch:
		return "🔍 " + m.Content
	case feed.CategorySummary:
		return "📋 요약: " + m.Content
	case feed.CategoryHistoryUpdate:
		return "📝 " + m.Content
	case feed.CategoryQuestion:
		if echo {
			return "질문: " + m.Content
		}
	case feed.CategoryAnswer:
		if echo {
			return "📝 답변: " + m.Content
		}
	}
	return ""
}
