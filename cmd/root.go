package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/assistant"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/display"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/history"
	"github.com/quocvuong92/voice-assistant/internal/logging"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
	"github.com/quocvuong92/voice-assistant/internal/speech"
)

// App holds the application state
type App struct {
	cfg *config.Config
	in  io.Reader
	out io.Writer
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg: config.NewConfig(),
		in:  os.Stdin,
		out: os.Stdout,
	}
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(NewApp()).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree around app
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Korean voice assistant with live lookups",
		Long: `A Korean voice assistant backed by Gemini (or Azure OpenAI).

Questions about the time, weather or news are answered with live data
from OpenWeatherMap, Naver, Brave or Google. Answers are read aloud with
Google Text-to-Speech and every turn is kept in a local history file.

Examples:
  assistant                          # Interactive mode
  assistant -r                       # Interactive with markdown rendering
  assistant ask "오늘 서울 날씨 어때?"
  assistant ask --audio question.wav
  assistant history -n 5
  assistant searchtest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runInteractive()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Enable debug logging including HTTP requests")
	flags.BoolVarP(&app.cfg.Render, "render", "r", false, "Render markdown with colors and formatting")
	flags.BoolVar(&app.cfg.NoSpeak, "no-speak", false, "Do not read answers aloud")
	flags.StringVar(&app.cfg.ConfigPath, "config", "", "Config file path (default: search standard locations)")

	rootCmd.AddCommand(
		newAskCmd(app),
		newHistoryCmd(app),
		newClearCmd(app),
		newSearchTestCmd(app),
		newTTSTestCmd(app),
		newTranscribeCmd(app),
		newConfigCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}

// setup loads configuration and applies logging and rendering settings
func (app *App) setup() error {
	if err := app.cfg.Validate(); err != nil {
		display.ShowError(err.Error())
		return err
	}
	logging.Setup(app.cfg.LogLevel, app.cfg.LogFormat)

	if app.cfg.Render {
		if err := display.InitRenderer(); err != nil {
			logging.Warn("failed to initialize renderer", logging.Fields{"error": err.Error()})
		}
	}
	return nil
}

// newAssistant builds the turn pipeline. A missing generator credential is
// fatal because every turn needs the model.
func (app *App) newAssistant(sender feed.Sender) (*assistant.Assistant, *history.Store, error) {
	if err := app.cfg.RequireGenerator(); err != nil {
		return nil, nil, err
	}
	gen, err := api.NewGenerator(app.cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := app.openStore()
	if err != nil {
		return nil, nil, err
	}
	return assistant.New(app.cfg, store, realtime.NewDefaultGatherer(app.cfg), gen, sender), store, nil
}

// openStore loads the history file for the commands that only need the log
func (app *App) openStore() (*history.Store, error) {
	return history.Open(app.cfg)
}

// newSpeaker returns nil when speech output is disabled or unavailable
func (app *App) newSpeaker(ctx context.Context, sender feed.Sender) *speech.Speaker {
	if app.cfg.NoSpeak {
		return nil
	}
	synth, err := speech.NewGoogleSynthesizer(ctx, app.cfg)
	if err != nil {
		logging.Warn("speech output disabled", logging.Fields{"error": err.Error()})
		return nil
	}
	return speech.NewSpeaker(synth, speech.DefaultPlayer(), sender)
}

// speak reads text aloud, reporting but not propagating failures
func speak(ctx context.Context, sp *speech.Speaker, text string) {
	if sp == nil || text == "" {
		return
	}
	if err := sp.Speak(ctx, text); err != nil {
		display.ShowWarning(fmt.Sprintf("음성 출력 실패: %v", err))
	}
}
