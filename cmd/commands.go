package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/display"
	"github.com/quocvuong92/voice-assistant/internal/history"
)

// Command names understood by the interactive session
const (
	cmdHistory    = "/history"
	cmdClear      = "/clear"
	cmdSearch     = "/search"
	cmdExport     = "/export"
	cmdStats      = "/stats"
	cmdSearchTest = "/searchtest"
	cmdTTSTest    = "/ttstest"
	cmdHelp       = "/help"
	cmdExit       = "/exit"
)

// commandAliases maps bare words and short forms to commands
var commandAliases = map[string]string{
	"히스토리":   cmdHistory,
	"history": cmdHistory,
	"초기화":    cmdClear,
	"clear":   cmdClear,
	"검색테스트":  cmdSearchTest,
	"음성테스트":  cmdTTSTest,
	"종료":     cmdExit,
	"exit":    cmdExit,
	"quit":    cmdExit,
	"/quit":   cmdExit,
	"/q":      cmdExit,
	"/h":      cmdHelp,
}

// resolveCommand reports whether input is a command and returns its
// canonical name and argument. Bare aliases only match the whole input;
// anything else without a leading slash is a question.
func resolveCommand(input string) (name, arg string, ok bool) {
	input = strings.TrimSpace(input)
	if cmd, found := commandAliases[strings.ToLower(input)]; found {
		return cmd, "", true
	}
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}

	parts := strings.SplitN(input, " ", 2)
	name = strings.ToLower(parts[0])
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	if cmd, found := commandAliases[name]; found {
		name = cmd
	}
	return name, arg, true
}

// handleCommand runs a resolved command. Returns true if the session
// should exit.
func (s *InteractiveSession) handleCommand(name, arg string) bool {
	app := s.app
	ctx := context.Background()

	switch name {
	case cmdExit:
		fmt.Println("👋 프로그램을 종료합니다.")
		return true

	case cmdHistory:
		display.WriteHistory(app.out, s.store.Len(), s.store.Recent(constants.DefaultHistoryTurns))

	case cmdClear:
		if !display.Confirm(app.in, app.out, "대화 히스토리를 모두 삭제할까요?") {
			fmt.Fprintln(app.out, "취소되었습니다.")
			break
		}
		app.clearHistory(app.out, s.store)

	case cmdSearch:
		if arg == "" {
			fmt.Fprintln(app.out, "사용법: /search <키워드>")
			break
		}
		display.WriteSearchHits(app.out, arg, s.store.Search(arg))

	case cmdExport:
		app.exportHistory(app.out, s.store, arg)

	case cmdStats:
		display.WriteStats(app.out, s.store.Statistics())

	case cmdSearchTest:
		app.runSearchTest(ctx, app.out, newProbe(app.cfg))

	case cmdTTSTest:
		app.runTTSTest(ctx, app.out, s.speaker, arg)

	case cmdHelp:
		showHelp()

	default:
		fmt.Printf("알 수 없는 명령어: %s\n", name)
		fmt.Println("/help 로 사용 가능한 명령어를 확인하세요")
	}

	return false
}

// showHelp displays the help message with all available commands
func showHelp() {
	fmt.Println("\n명령어:")
	fmt.Printf("  %-28s %s\n", "/history, 히스토리", "최근 대화 보기")
	fmt.Printf("  %-28s %s\n", "/clear, 초기화", "대화 히스토리 삭제 (백업 후)")
	fmt.Printf("  %-28s %s\n", "/search <키워드>", "히스토리 검색")
	fmt.Printf("  %-28s %s\n", "/export [txt|json]", "히스토리 내보내기")
	fmt.Printf("  %-28s %s\n", "/stats", "히스토리 통계")
	fmt.Printf("  %-28s %s\n", "/searchtest, 검색테스트", "실시간 검색 API 테스트")
	fmt.Printf("  %-28s %s\n", "/ttstest [문장], 음성테스트", "음성 출력 테스트")
	fmt.Printf("  %-28s %s\n", "/help, /h", "도움말")
	fmt.Printf("  %-28s %s\n", "/exit, 종료, quit", "종료")
	fmt.Println()
}

func (app *App) clearHistory(w io.Writer, log history.Log) {
	backup, err := log.Clear()
	if backup != "" {
		fmt.Fprintf(w, "💾 기존 히스토리가 %s에 백업되었습니다.\n", backup)
	}
	if err != nil {
		display.ShowError(fmt.Sprintf("히스토리 저장 오류: %v", err))
		return
	}
	fmt.Fprintln(w, "✅ 히스토리 초기화 완료")
}

func (app *App) exportHistory(w io.Writer, store *history.Store, format string) {
	if format == "" {
		format = "txt"
	}
	path, err := store.Export(format, "")
	if err != nil {
		display.ShowError(err.Error())
		return
	}
	fmt.Fprintf(w, "📤 히스토리가 %s로 저장되었습니다.\n", path)
}
