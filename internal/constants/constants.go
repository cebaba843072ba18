// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultRequestTimeout bounds every outbound call (weather, news, search, generation)
	DefaultRequestTimeout = 10 * time.Second
	// DefaultSpeechTimeout bounds a synthesis or transcription call
	DefaultSpeechTimeout = 30 * time.Second
)

// Application defaults
const (
	AppName    = "assistant"
	AppVersion = "1.0.0"

	DefaultProvider    = "gemini"
	DefaultGeminiModel = "gemini-2.0-flash"

	DefaultHistoryFile = "conversation_history.json"
	DefaultMaxHistory  = 10

	DefaultTimezone = "Asia/Seoul"
	DefaultCity     = "Seoul"

	DefaultSummaryThreshold = 300
	DefaultSummarySentences = 2
	DefaultSummaryFallback  = 200

	DefaultHistoryTurns = 3
	DefaultAnswerBudget = 150

	DefaultMinFragments = 2
	DefaultMaxFragments = 3

	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 1 * time.Second

	DefaultVoiceName    = "ko-KR-Wavenet-A"
	DefaultLanguageCode = "ko-KR"
	DefaultAudioPrefix  = "response_"

	DefaultFeedBuffer = 64
)

// DefaultLiveKeywords mark an utterance as needing live information
var DefaultLiveKeywords = []string{
	"최신", "지금", "현재", "오늘", "뉴스", "날씨", "시간", "요즘",
	"latest", "now", "current", "today", "news", "weather", "time", "these days",
}

// Per-provider trigger keywords
var (
	DefaultTimeKeywords    = []string{"시간", "지금", "현재", "time", "now"}
	DefaultWeatherKeywords = []string{"날씨", "weather"}
	DefaultNewsKeywords    = []string{"뉴스", "news"}
)
