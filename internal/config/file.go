package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// Provider selection
	Provider string `yaml:"provider,omitempty"` // "gemini", "azure"

	Gemini   *GeminiConfig   `yaml:"gemini,omitempty"`
	Azure    *AzureConfig    `yaml:"azure,omitempty"`
	Lookup   *LookupConfig   `yaml:"lookup,omitempty"`
	History  *HistoryConfig  `yaml:"history,omitempty"`
	Prompt   *PromptConfig   `yaml:"prompt,omitempty"`
	Keywords *KeywordsConfig `yaml:"keywords,omitempty"`
	Speech   *SpeechConfig   `yaml:"speech,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
}

// GeminiConfig holds Gemini generation settings
type GeminiConfig struct {
	APIKey           string `yaml:"api_key,omitempty"`
	Model            string `yaml:"model,omitempty"`
	RetryAttempts    int    `yaml:"retry_attempts,omitempty"`
	RetryDelay       string `yaml:"retry_delay,omitempty"` // Go duration, e.g. "1s"
	SummaryThreshold int    `yaml:"summary_threshold,omitempty"`
	SummarySentences int    `yaml:"summary_sentences,omitempty"`
}

// AzureConfig holds Azure-specific configuration
type AzureConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// LookupConfig holds real-time lookup settings
type LookupConfig struct {
	Timeout           string   `yaml:"timeout,omitempty"`
	Timezone          string   `yaml:"timezone,omitempty"`
	City              string   `yaml:"city,omitempty"`
	WeatherAPIKey     string   `yaml:"weather_api_key,omitempty"`
	NaverClientID     string   `yaml:"naver_client_id,omitempty"`
	NaverClientSecret string   `yaml:"naver_client_secret,omitempty"`
	BraveKeys         []string `yaml:"brave_keys,omitempty"`
	MinFragments      int      `yaml:"min_fragments,omitempty"`
	MaxFragments      int      `yaml:"max_fragments,omitempty"`
}

// HistoryConfig holds conversation store settings
type HistoryConfig struct {
	File       string `yaml:"file,omitempty"`
	BackupDir  string `yaml:"backup_dir,omitempty"`
	MaxEntries int    `yaml:"max_entries,omitempty"`
}

// PromptConfig holds context assembly settings
type PromptConfig struct {
	HistoryTurns   int    `yaml:"history_turns,omitempty"`
	AnswerBudget   int    `yaml:"answer_budget,omitempty"`
	QuestionPrefix string `yaml:"question_prefix,omitempty"`
}

// KeywordsConfig overrides the keyword sets
type KeywordsConfig struct {
	Live    []string `yaml:"live,omitempty"`
	Time    []string `yaml:"time,omitempty"`
	Weather []string `yaml:"weather,omitempty"`
	News    []string `yaml:"news,omitempty"`
}

// SpeechConfig holds speech synthesis settings
type SpeechConfig struct {
	Credentials  string  `yaml:"credentials,omitempty"`
	APIKey       string  `yaml:"api_key,omitempty"`
	Voice        string  `yaml:"voice,omitempty"`
	LanguageCode string  `yaml:"language_code,omitempty"`
	SpeakingRate float64 `yaml:"speaking_rate,omitempty"`
	Pitch        float64 `yaml:"pitch,omitempty"`
	VolumeGainDb float64 `yaml:"volume_gain_db,omitempty"`
	Disabled     bool    `yaml:"disabled,omitempty"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text" or "json"
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	paths = append(paths, filepath.Join(".", "."+constants.AppName, ConfigFileName))

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile loads the explicit path when given, otherwise the first
// config file found in GetConfigPaths. No file at all yields an empty config.
func LoadConfigFile(explicit string) (*FileConfig, error) {
	if explicit != "" {
		return loadConfigFromPath(explicit)
	}

	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig fills fields still unset after flags and environment
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	setString(&c.Provider, fc.Provider)

	if g := fc.Gemini; g != nil {
		setString(&c.GeminiAPIKey, g.APIKey)
		setString(&c.GeminiModel, g.Model)
		setInt(&c.RetryAttempts, g.RetryAttempts)
		setInt(&c.SummaryThreshold, g.SummaryThreshold)
		setInt(&c.SummarySentences, g.SummarySentences)
		setDuration(&c.RetryDelay, g.RetryDelay)
	}

	if a := fc.Azure; a != nil {
		setString(&c.AzureEndpoint, a.Endpoint)
		setString(&c.AzureAPIKey, a.APIKey)
		setString(&c.AzureModel, a.Model)
	}

	if l := fc.Lookup; l != nil {
		setDuration(&c.RequestTimeout, l.Timeout)
		setString(&c.Timezone, l.Timezone)
		setString(&c.City, l.City)
		setString(&c.WeatherAPIKey, l.WeatherAPIKey)
		setString(&c.NaverClientID, l.NaverClientID)
		setString(&c.NaverClientSecret, l.NaverClientSecret)
		setInt(&c.MinFragments, l.MinFragments)
		setInt(&c.MaxFragments, l.MaxFragments)
		if !c.BraveKeys.HasKeys() && len(l.BraveKeys) > 0 {
			c.BraveKeys = NewKeyRotatorFromKeys(l.BraveKeys)
		}
	}

	if h := fc.History; h != nil {
		setString(&c.HistoryFile, h.File)
		setString(&c.BackupDir, h.BackupDir)
		setInt(&c.MaxHistory, h.MaxEntries)
	}

	if p := fc.Prompt; p != nil {
		setInt(&c.HistoryTurns, p.HistoryTurns)
		setInt(&c.AnswerBudget, p.AnswerBudget)
		setString(&c.QuestionPrefix, p.QuestionPrefix)
	}

	if k := fc.Keywords; k != nil {
		setList(&c.LiveKeywords, k.Live)
		setList(&c.TimeKeywords, k.Time)
		setList(&c.WeatherKeywords, k.Weather)
		setList(&c.NewsKeywords, k.News)
	}

	if s := fc.Speech; s != nil {
		setString(&c.GoogleCredentials, s.Credentials)
		setString(&c.GoogleAPIKey, s.APIKey)
		setString(&c.VoiceName, s.Voice)
		setString(&c.LanguageCode, s.LanguageCode)
		if c.SpeakingRate == 0 {
			c.SpeakingRate = s.SpeakingRate
		}
		if c.Pitch == 0 {
			c.Pitch = s.Pitch
		}
		if c.VolumeGainDb == 0 {
			c.VolumeGainDb = s.VolumeGainDb
		}
		// Only a true value is meaningful here, as with the CLI flag
		if s.Disabled {
			c.NoSpeak = true
		}
	}

	if lg := fc.Logging; lg != nil {
		setString(&c.LogLevel, lg.Level)
		setString(&c.LogFormat, lg.Format)
	}
}

func setDuration(dst *time.Duration, value string) {
	if *dst != 0 || value == "" {
		return
	}
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
	}
}

func setList(dst *[]string, value []string) {
	if len(*dst) == 0 && len(value) > 0 {
		*dst = value
	}
}

// CreateDefaultConfigFile creates a default config file at the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return writeDefaultConfig(filepath.Join(configDir, constants.AppName))
}

func writeDefaultConfig(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

const defaultConfigTemplate = `# Voice Assistant Configuration
# Location: ~/.config/assistant/config.yaml
# Environment variables and .env values override this file.

# Generation provider: "gemini" (default) or "azure"
# provider: gemini

# gemini:
#   api_key: your-gemini-key     # or GEMINI_API_KEY
#   model: gemini-2.0-flash
#   retry_attempts: 3
#   retry_delay: 1s
#   summary_threshold: 300
#   summary_sentences: 2

# azure:
#   endpoint: https://your-resource.openai.azure.com
#   api_key: your-api-key
#   model: gpt-4o

# lookup:
#   timeout: 10s
#   timezone: Asia/Seoul
#   city: Seoul
#   weather_api_key: your-openweathermap-key
#   naver_client_id: your-naver-id
#   naver_client_secret: your-naver-secret
#   brave_keys:
#     - your-brave-key
#   min_fragments: 2
#   max_fragments: 3

# history:
#   file: conversation_history.json
#   backup_dir: .
#   max_entries: 10

# prompt:
#   history_turns: 3
#   answer_budget: 150
#   question_prefix: "질문: "

# keywords:
#   live: [최신, 지금, 현재, 오늘, 뉴스, 날씨, 시간, 요즘]
#   time: [시간, 지금, 현재]
#   weather: [날씨]
#   news: [뉴스]

# speech:
#   credentials: /path/to/service-account.json
#   voice: ko-KR-Wavenet-A
#   language_code: ko-KR
#   speaking_rate: 1.0
#   pitch: 0.0
#   volume_gain_db: 0.0
#   disabled: false

# logging:
#   level: warn
#   format: text
`
