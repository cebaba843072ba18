// Package display renders answers, progress and status notices in the
// terminal.
package display

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
)

var (
	renderer   *glamour.TermRenderer
	rendererMu sync.Mutex
)

// InitRenderer prepares the markdown renderer used by ShowAnswer
func InitRenderer() error {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	renderer = r
	return nil
}

// RenderMarkdown renders content with the markdown renderer, or returns it
// unchanged when no renderer is initialized or rendering fails.
func RenderMarkdown(content string) string {
	rendererMu.Lock()
	r := renderer
	rendererMu.Unlock()

	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// ShowAnswer writes an answer to w, rendered as markdown when render is set
func ShowAnswer(w io.Writer, content string, render bool) {
	if render {
		content = RenderMarkdown(content)
	}
	fmt.Fprintln(w, content)
}

// ShowError prints an error message to stderr
func ShowError(msg string) {
	fmt.Fprintf(os.Stderr, "❌ 오류: %s\n", msg)
}

// ShowWarning prints a warning to stderr
func ShowWarning(msg string) {
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
}

// Spinner shows progress while a turn runs
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stopped spinner with msg as its label
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	return &Spinner{s: s}
}

// Start begins animating
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop stops animating and clears the line
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// Active reports whether the spinner is running
func (sp *Spinner) Active() bool {
	return sp.s.Active()
}

// Update replaces the label
func (sp *Spinner) Update(msg string) {
	sp.s.Lock()
	sp.s.Suffix = " " + msg
	sp.s.Unlock()
}

// Confirm asks a yes/no question and reads one line from in. Korean and
// English affirmatives are accepted; anything else means no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/n): ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "예", "네", "응", "ㅇ":
		return true
	default:
		return false
	}
}
