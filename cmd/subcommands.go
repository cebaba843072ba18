package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/display"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
	"github.com/quocvuong92/voice-assistant/internal/speech"
)

// ErrNoQuestion is returned by ask when neither text nor audio is given
var ErrNoQuestion = errors.New("no question given")

func newAskCmd(app *App) *cobra.Command {
	var audioPath string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Ask a single question and print (and speak) the answer.

The question is taken from the argument or transcribed from a 16 kHz
LINEAR16 WAV file with --audio.

Examples:
  assistant ask "지금 몇 시야?"
  assistant ask --audio question.wav --no-speak`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			question := ""
			if len(args) == 1 {
				question = args[0]
			}
			if audioPath != "" {
				text, err := app.transcribe(ctx, audioPath)
				if err != nil {
					display.ShowError(err.Error())
					return err
				}
				fmt.Fprintf(app.out, "🎤 인식된 질문: %s\n", text)
				question = text
			}
			if strings.TrimSpace(question) == "" {
				_ = cmd.Help()
				return ErrNoQuestion
			}

			session, err := app.newSession()
			if err != nil {
				return err
			}
			session.ask(question)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "WAV file to transcribe as the question")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			display.WriteHistory(app.out, store.Len(), store.Recent(count))
			fmt.Fprintln(app.out, store.Summary())
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of conversations to show")
	return cmd
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Back up and clear the conversation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			if !yes && !display.Confirm(app.in, app.out, "대화 히스토리를 모두 삭제할까요?") {
				fmt.Fprintln(app.out, "취소되었습니다.")
				return nil
			}
			app.clearHistory(app.out, store)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newSearchTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "searchtest",
		Short: "Test the time, weather and search lookups",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.runSearchTest(context.Background(), app.out, newProbe(app.cfg))
		},
	}
}

func newTTSTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ttstest [text]",
		Short: "Speak a test sentence",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			ctx := context.Background()
			return app.runTTSTest(ctx, app.out, app.newSpeaker(ctx, nil), text)
		},
	}
}

func newTranscribeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <file.wav>",
		Short: "Transcribe a WAV file with Google Speech-to-Text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := app.transcribe(context.Background(), args[0])
			if errors.Is(err, speech.ErrNoSpeech) {
				fmt.Fprintln(app.out, "인식된 음성이 없습니다.")
				return nil
			}
			if err != nil {
				display.ShowError(err.Error())
				return err
			}
			fmt.Fprintln(app.out, text)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// Writing a fresh file must work even when the current one is broken
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfigFile()
			if err != nil {
				display.ShowError(err.Error())
				return err
			}
			fmt.Fprintf(app.out, "✅ 설정 파일을 만들었습니다: %s\n", path)
			return nil
		},
	})
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured",
		Long: `Show which credentials are configured.

Required credentials are marked ❌ when missing; optional ones only
disable the lookup or speech feature that needs them.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.out, "Provider: %s\n", app.cfg.Provider)
			fmt.Fprintf(app.out, "Search: %s\n", strings.Join(realtime.NewDefaultSearchChain(app.cfg).Providers(), " → "))
			display.WriteCredentialStatus(app.out, app.cfg.CredentialStatus())
		},
	}
}
