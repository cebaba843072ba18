package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// Environment variable names
const (
	// Generation settings
	EnvAIProvider   = "AI_PROVIDER"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"

	// Azure settings
	EnvAzureEndpoint = "AZURE_OPENAI_ENDPOINT"
	EnvAzureAPIKey   = "AZURE_OPENAI_API_KEY"
	EnvAzureModel    = "AZURE_OPENAI_MODEL"

	// Speech settings
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvGoogleAPIKey      = "GOOGLE_API_KEY"

	// Lookup settings
	EnvNaverClientID     = "NAVER_CLIENT_ID"
	EnvNaverClientSecret = "NAVER_CLIENT_SECRET"
	EnvWeatherAPIKey     = "WEATHER_API_KEY"
	EnvBraveAPIKeys      = "BRAVE_API_KEYS"

	// Assistant tunables
	EnvHistoryFile = "ASSISTANT_HISTORY_FILE"
	EnvMaxHistory  = "ASSISTANT_MAX_HISTORY"
	EnvTimezone    = "ASSISTANT_TIMEZONE"
	EnvCity        = "ASSISTANT_CITY"
	EnvLogLevel    = "ASSISTANT_LOG_LEVEL"
)

// DotEnvFile is loaded before environment lookups; existing variables win.
const DotEnvFile = ".env"

// Errors
var (
	ErrGeminiKeyNotFound = errors.New("Gemini API key not found. Set GEMINI_API_KEY environment variable")
	ErrAzureNotFound     = errors.New("Azure provider requires AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY")
	ErrInvalidProvider   = errors.New("invalid AI provider. Use 'gemini' or 'azure'")
	ErrNoAvailableKeys   = errors.New("all API keys exhausted")
	ErrInvalidValue      = errors.New("invalid configuration value")
)

// Error codes that should trigger key rotation
var RotatableErrorCodes = []int{401, 403, 429}

// KeyRotator manages a pool of API keys with rotation support
type KeyRotator struct {
	keys       []string
	currentIdx int
	currentKey string
}

// NewKeyRotator creates a new KeyRotator from an environment variable
func NewKeyRotator(envVar string) *KeyRotator {
	return NewKeyRotatorFromKeys(splitList(os.Getenv(envVar)))
}

// NewKeyRotatorFromKeys creates a KeyRotator over an explicit key list
func NewKeyRotatorFromKeys(keys []string) *KeyRotator {
	kr := &KeyRotator{keys: keys}
	if len(keys) > 0 {
		kr.currentKey = keys[0]
	}
	return kr
}

// GetCurrentKey returns the current active API key
func (kr *KeyRotator) GetCurrentKey() string {
	return kr.currentKey
}

// GetKeyCount returns the total number of keys
func (kr *KeyRotator) GetKeyCount() int {
	return len(kr.keys)
}

// GetCurrentIndex returns the current key index (0-based)
func (kr *KeyRotator) GetCurrentIndex() int {
	return kr.currentIdx
}

// HasKeys returns true if there are any keys configured
func (kr *KeyRotator) HasKeys() bool {
	return kr != nil && len(kr.keys) > 0
}

// Rotate moves to the next available API key
func (kr *KeyRotator) Rotate() (string, error) {
	if len(kr.keys) <= 1 || kr.currentIdx+1 >= len(kr.keys) {
		return "", ErrNoAvailableKeys
	}
	kr.currentIdx++
	kr.currentKey = kr.keys[kr.currentIdx]
	return kr.currentKey, nil
}

// splitList splits a comma-separated value, dropping blanks
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// Config holds the application configuration. It is filled by flags,
// environment and config file, then treated as read-only once Validate
// has returned.
type Config struct {
	// Generation provider
	Provider     string // "gemini" or "azure"
	GeminiAPIKey string
	GeminiModel  string

	// Azure OpenAI settings
	AzureEndpoint string
	AzureAPIKey   string
	AzureModel    string

	// Speech credentials
	GoogleCredentials string
	GoogleAPIKey      string

	// Lookup credentials
	NaverClientID     string
	NaverClientSecret string
	WeatherAPIKey     string
	BraveKeys         *KeyRotator

	// Conversation store
	HistoryFile string
	BackupDir   string
	MaxHistory  int

	// Lookups
	RequestTimeout time.Duration
	Timezone       string
	City           string

	// Prompt assembly
	HistoryTurns   int
	AnswerBudget   int
	QuestionPrefix string
	MinFragments   int
	MaxFragments   int

	// Keyword sets
	LiveKeywords    []string
	TimeKeywords    []string
	WeatherKeywords []string
	NewsKeywords    []string

	// Generation behaviour
	RetryAttempts    int
	RetryDelay       time.Duration
	SummaryThreshold int
	SummarySentences int

	// Speech synthesis
	VoiceName    string
	LanguageCode string
	SpeakingRate float64
	Pitch        float64
	VolumeGainDb float64

	// Presentation and logging
	FeedBuffer int
	LogLevel   string
	LogFormat  string

	// Flags
	ConfigPath string
	Verbose    bool
	Render     bool
	NoSpeak    bool
	NoDotEnv   bool
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// Validate loads .env, environment and config file values into unset
// fields, applies defaults and checks tunables. Flags set on the struct
// before the call take precedence over everything else.
func (c *Config) Validate() error {
	if !c.NoDotEnv {
		// Missing .env is the common case
		_ = godotenv.Load(DotEnvFile)
	}

	if err := c.applyEnv(); err != nil {
		return err
	}

	fileConfig, err := LoadConfigFile(c.ConfigPath)
	if err != nil {
		return err
	}
	c.ApplyFileConfig(fileConfig)

	c.applyDefaults()

	switch c.Provider {
	case "gemini", "azure":
	default:
		return ErrInvalidProvider
	}

	if c.MaxHistory <= 0 {
		return fmt.Errorf("%w: max history must be positive, got %d", ErrInvalidValue, c.MaxHistory)
	}
	if c.MinFragments > c.MaxFragments {
		return fmt.Errorf("%w: min fragments %d exceeds max fragments %d", ErrInvalidValue, c.MinFragments, c.MaxFragments)
	}
	return nil
}

// RequireGenerator reports whether the configured generation provider has
// its credentials. Commands that talk to the model call it after Validate.
func (c *Config) RequireGenerator() error {
	switch c.Provider {
	case "azure":
		if c.AzureEndpoint == "" || c.AzureAPIKey == "" {
			return ErrAzureNotFound
		}
	default:
		if c.GeminiAPIKey == "" {
			return ErrGeminiKeyNotFound
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, os.Getenv(EnvAIProvider))
	setString(&c.GeminiAPIKey, strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)))
	setString(&c.GeminiModel, os.Getenv(EnvGeminiModel))
	setString(&c.AzureEndpoint, os.Getenv(EnvAzureEndpoint))
	setString(&c.AzureAPIKey, strings.TrimSpace(os.Getenv(EnvAzureAPIKey)))
	setString(&c.AzureModel, os.Getenv(EnvAzureModel))
	setString(&c.GoogleCredentials, os.Getenv(EnvGoogleCredentials))
	setString(&c.GoogleAPIKey, strings.TrimSpace(os.Getenv(EnvGoogleAPIKey)))
	setString(&c.NaverClientID, os.Getenv(EnvNaverClientID))
	setString(&c.NaverClientSecret, os.Getenv(EnvNaverClientSecret))
	setString(&c.WeatherAPIKey, strings.TrimSpace(os.Getenv(EnvWeatherAPIKey)))
	setString(&c.HistoryFile, os.Getenv(EnvHistoryFile))
	setString(&c.Timezone, os.Getenv(EnvTimezone))
	setString(&c.City, os.Getenv(EnvCity))
	setString(&c.LogLevel, os.Getenv(EnvLogLevel))

	if !c.BraveKeys.HasKeys() {
		c.BraveKeys = NewKeyRotator(EnvBraveAPIKeys)
	}

	if v := os.Getenv(EnvMaxHistory); v != "" && c.MaxHistory == 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvMaxHistory, v)
		}
		c.MaxHistory = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	setString(&c.Provider, constants.DefaultProvider)
	c.Provider = strings.ToLower(c.Provider)
	setString(&c.GeminiModel, constants.DefaultGeminiModel)
	c.AzureEndpoint = strings.TrimSuffix(c.AzureEndpoint, "/")
	setString(&c.HistoryFile, constants.DefaultHistoryFile)
	setString(&c.Timezone, constants.DefaultTimezone)
	setString(&c.City, constants.DefaultCity)
	setString(&c.QuestionPrefix, "질문: ")
	setString(&c.VoiceName, constants.DefaultVoiceName)
	setString(&c.LanguageCode, constants.DefaultLanguageCode)
	setString(&c.LogFormat, "text")
	if c.LogLevel == "" {
		c.LogLevel = "warn"
		if c.Verbose {
			c.LogLevel = "debug"
		}
	}

	setInt(&c.MaxHistory, constants.DefaultMaxHistory)
	setInt(&c.HistoryTurns, constants.DefaultHistoryTurns)
	setInt(&c.AnswerBudget, constants.DefaultAnswerBudget)
	setInt(&c.MinFragments, constants.DefaultMinFragments)
	setInt(&c.MaxFragments, constants.DefaultMaxFragments)
	setInt(&c.RetryAttempts, constants.DefaultRetryAttempts)
	setInt(&c.SummaryThreshold, constants.DefaultSummaryThreshold)
	setInt(&c.SummarySentences, constants.DefaultSummarySentences)
	setInt(&c.FeedBuffer, constants.DefaultFeedBuffer)

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = constants.DefaultRetryDelay
	}
	if c.SpeakingRate == 0 {
		c.SpeakingRate = 1.0
	}

	if len(c.LiveKeywords) == 0 {
		c.LiveKeywords = constants.DefaultLiveKeywords
	}
	if len(c.TimeKeywords) == 0 {
		c.TimeKeywords = constants.DefaultTimeKeywords
	}
	if len(c.WeatherKeywords) == 0 {
		c.WeatherKeywords = constants.DefaultWeatherKeywords
	}
	if len(c.NewsKeywords) == 0 {
		c.NewsKeywords = constants.DefaultNewsKeywords
	}
	if c.BraveKeys == nil {
		c.BraveKeys = NewKeyRotatorFromKeys(nil)
	}
}

func setString(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if *dst == 0 {
		*dst = value
	}
}

// GetAzureAPIURL builds the full API URL for chat completions
func (c *Config) GetAzureAPIURL() string {
	return fmt.Sprintf("%s/openai/v1/chat/completions", c.AzureEndpoint)
}

// HasNaver reports whether both Naver credentials are present
func (c *Config) HasNaver() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}

// HasSpeechCredentials reports whether Google speech services can authenticate
func (c *Config) HasSpeechCredentials() bool {
	return c.GoogleCredentials != "" || c.GoogleAPIKey != ""
}

// CredentialState describes one credential for the startup report
type CredentialState struct {
	Name     string
	Present  bool
	Required bool
}

// CredentialStatus lists every credential and whether it is configured
func (c *Config) CredentialStatus() []CredentialState {
	generator := CredentialState{Name: "Gemini API", Present: c.GeminiAPIKey != "", Required: c.Provider != "azure"}
	states := []CredentialState{generator}
	if c.Provider == "azure" {
		states = append(states, CredentialState{Name: "Azure OpenAI", Present: c.AzureEndpoint != "" && c.AzureAPIKey != "", Required: true})
	}
	return append(states,
		CredentialState{Name: "Google Cloud", Present: c.HasSpeechCredentials()},
		CredentialState{Name: "Naver API", Present: c.HasNaver()},
		CredentialState{Name: "Weather API", Present: c.WeatherAPIKey != ""},
		CredentialState{Name: "Brave API", Present: c.BraveKeys.HasKeys()},
	)
}
