package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/voice-assistant/internal/assistant"
	"github.com/quocvuong92/voice-assistant/internal/display"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/logging"
	"github.com/quocvuong92/voice-assistant/internal/speech"
)

// InteractiveSession holds the state for an interactive voice session
type InteractiveSession struct {
	app       *App
	assistant *assistant.Assistant
	store     *history.Store
	speaker   *speech.Speaker
	sender    *turnSender
	printer   *display.Printer
	spinner   *display.Spinner
	exitFlag  bool
	log       *logging.FieldLogger
}

// turnSender forwards messages to the feed of the running turn. Between
// turns messages are dropped.
type turnSender struct {
	mu sync.Mutex
	f  *feed.Feed
}

func (t *turnSender) attach(f *feed.Feed) {
	t.mu.Lock()
	t.f = f
	t.mu.Unlock()
}

// Send implements feed.Sender
func (t *turnSender) Send(category feed.Category, content string) {
	t.mu.Lock()
	f := t.f
	t.mu.Unlock()
	if f != nil {
		f.Send(category, content)
	}
}

// completer provides auto-completion suggestions for slash commands
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	if strings.HasPrefix(strings.ToLower(text), "/export ") {
		suggestions := []prompt.Suggest{
			{Text: "txt", Description: "Plain text"},
			{Text: "json", Description: "JSON with export metadata"},
		}
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	return prompt.FilterHasPrefix(commandSuggestions, w, true), startIndex, endIndex
}

var commandSuggestions = []prompt.Suggest{
	{Text: "/history", Description: "Show recent conversations (히스토리)"},
	{Text: "/clear", Description: "Clear conversation history (초기화)"},
	{Text: "/search", Description: "Search conversation history"},
	{Text: "/export", Description: "Export history as txt or json"},
	{Text: "/stats", Description: "Show history statistics"},
	{Text: "/searchtest", Description: "Test live lookups (검색테스트)"},
	{Text: "/ttstest", Description: "Test speech output (음성테스트)"},
	{Text: "/help", Description: "Show all available commands"},
	{Text: "/exit", Description: "Exit interactive mode (종료)"},
}

// runInteractive starts the REPL. Plain input is a question, slash commands
// and their Korean aliases manage the session.
func (app *App) runInteractive() error {
	session, err := app.newSession()
	if err != nil {
		return err
	}

	fmt.Println("🤖 AI 음성 비서 시작")
	fmt.Printf("📚 %d개의 이전 대화 기억 중\n", session.store.Len())
	fmt.Println("🔍 실시간 검색: 뉴스, 날씨, 시간 등")
	if session.speaker == nil {
		fmt.Println("🔇 음성 출력 꺼짐")
	}
	fmt.Println("\n명령어: 히스토리, 초기화, 검색테스트, 음성테스트, 종료 (/help)")
	fmt.Println()

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("질문> "),
		prompt.WithTitle("Voice Assistant"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(10),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\n👋 프로그램을 종료합니다.")
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("👋 프로그램을 종료합니다.")
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
	return nil
}

// newSession builds the pipeline shared by the REPL and one-shot questions
func (app *App) newSession() (*InteractiveSession, error) {
	session := &InteractiveSession{
		app:     app,
		sender:  &turnSender{},
		printer: display.NewPrinter(app.out, false),
		spinner: display.NewSpinner("생각 중..."),
		log:     logging.Component("repl"),
	}

	a, store, err := app.newAssistant(session.sender)
	if err != nil {
		display.ShowError(err.Error())
		return nil, err
	}
	session.assistant = a
	session.store = store
	session.speaker = app.newSpeaker(context.Background(), session.sender)
	return session, nil
}

// executor handles each input line in the REPL
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	// A panic in one line is reported and the loop keeps reading input
	defer func() {
		if r := recover(); r != nil {
			s.spinner.Stop()
			s.log.Error("input aborted", fmt.Errorf("panic: %v", r), logging.Fields{"input": input})
			display.ShowError(fmt.Sprint(r))
		}
	}()

	if name, arg, ok := resolveCommand(input); ok {
		if s.handleCommand(name, arg) {
			s.exitFlag = true
		}
		return
	}

	s.ask(input)
}

// ask runs one turn. The answer is fully printed before it is spoken.
func (s *InteractiveSession) ask(question string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C during a turn cancels the turn, not the session
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	done := s.startFeed()
	defer done()

	s.spinner.Update("생각 중...")
	s.spinner.Start()
	turn := s.assistant.Ask(ctx, question)
	done()
	if ctx.Err() != nil || s.speaker == nil {
		return
	}

	speechDone := s.startFeed()
	defer speechDone()
	speak(ctx, s.speaker, turn.Spoken())
}

// startFeed attaches a fresh feed and starts its consumer. The returned
// func detaches it and waits until every message is printed; calls after
// the first are no-ops.
func (s *InteractiveSession) startFeed() func() {
	f := feed.New(s.app.cfg.FeedBuffer)
	s.sender.attach(f)
	s.printer.SetSpinner(s.spinner)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		f.Run(context.Background(), s.handle)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sender.attach(nil)
			f.Close()
			<-finished
			s.spinner.Stop()
			s.printer.SetSpinner(nil)
			if n := f.Dropped(); n > 0 {
				s.log.Debug("feed messages dropped", logging.Fields{"count": n})
			}
		})
	}
}

// handle prints the answer itself and hands everything else to the printer
func (s *InteractiveSession) handle(m feed.Message) {
	if m.Category != feed.CategoryAnswer {
		s.printer.Handle(m)
		return
	}
	s.spinner.Stop()
	fmt.Fprintln(s.app.out)
	fmt.Fprintln(s.app.out, "📝 답변:")
	display.ShowAnswer(s.app.out, m.Content, s.app.cfg.Render)
	fmt.Fprintln(s.app.out)
}
