package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTempConfigFile creates a temporary config file for testing
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".assistant")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfigFromPath_ValidConfig(t *testing.T) {
	content := `
provider: azure
azure:
  endpoint: https://test.openai.azure.com
  api_key: test-api-key
  model: gpt-4o
lookup:
  timeout: 5s
  city: Busan
  brave_keys:
    - brave-1
    - brave-2
  min_fragments: 1
  max_fragments: 4
history:
  file: custom.json
  max_entries: 20
keywords:
  weather: [날씨, 기온]
speech:
  voice: ko-KR-Wavenet-B
  speaking_rate: 1.2
  disabled: true
logging:
  level: debug
  format: json
`
	configPath := createTempConfigFile(t, content)

	cfg, err := loadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("loadConfigFromPath() error = %v", err)
	}

	if cfg.Provider != "azure" {
		t.Errorf("Provider = %q, want azure", cfg.Provider)
	}
	if cfg.Azure == nil || cfg.Azure.Endpoint != "https://test.openai.azure.com" {
		t.Errorf("Azure = %+v", cfg.Azure)
	}
	if cfg.Lookup == nil || len(cfg.Lookup.BraveKeys) != 2 || cfg.Lookup.MaxFragments != 4 {
		t.Errorf("Lookup = %+v", cfg.Lookup)
	}
	if cfg.History == nil || cfg.History.MaxEntries != 20 {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Keywords == nil || len(cfg.Keywords.Weather) != 2 {
		t.Errorf("Keywords = %+v", cfg.Keywords)
	}
	if cfg.Speech == nil || !cfg.Speech.Disabled || cfg.Speech.SpeakingRate != 1.2 {
		t.Errorf("Speech = %+v", cfg.Speech)
	}
	if cfg.Logging == nil || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "provider: [unclosed")

	if _, err := loadConfigFromPath(configPath); err == nil {
		t.Error("loadConfigFromPath() expected error for invalid YAML")
	}
}

func TestLoadConfigFile_ExplicitMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfigFile() expected error for missing explicit path")
	}
}

func TestLoadConfigFile_NoneFound(t *testing.T) {
	runInTempDir(t)

	cfg, err := LoadConfigFile("")
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg == nil || cfg.Provider != "" {
		t.Errorf("LoadConfigFile() = %+v, want empty config", cfg)
	}
}

func TestLoadConfigFile_LocalDirectory(t *testing.T) {
	dir := runInTempDir(t)
	configDir := filepath.Join(dir, ".assistant")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, ConfigFileName), []byte("provider: azure\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile("")
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Provider != "azure" {
		t.Errorf("Provider = %q, want azure", cfg.Provider)
	}
}

func TestApplyFileConfig_FillsOnlyUnset(t *testing.T) {
	cfg := &Config{
		City:      "Daegu",
		BraveKeys: NewKeyRotatorFromKeys(nil),
	}
	fc := &FileConfig{
		Lookup: &LookupConfig{
			City:      "Busan",
			Timeout:   "3s",
			BraveKeys: []string{"b1"},
		},
		Gemini: &GeminiConfig{RetryDelay: "not-a-duration"},
		Speech: &SpeechConfig{Disabled: true, Pitch: -2},
	}

	cfg.ApplyFileConfig(fc)

	if cfg.City != "Daegu" {
		t.Errorf("City = %q, want Daegu", cfg.City)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.RetryDelay != 0 {
		t.Errorf("RetryDelay = %v, want unset for invalid duration", cfg.RetryDelay)
	}
	if cfg.BraveKeys.GetCurrentKey() != "b1" {
		t.Errorf("BraveKeys current = %q, want b1", cfg.BraveKeys.GetCurrentKey())
	}
	if !cfg.NoSpeak || cfg.Pitch != -2 {
		t.Errorf("speech = NoSpeak %v Pitch %v", cfg.NoSpeak, cfg.Pitch)
	}
}

func TestApplyFileConfig_Nil(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyFileConfig(nil)
	if cfg.Provider != "" {
		t.Error("nil file config should not change anything")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assistant")

	path, err := writeDefaultConfig(dir)
	if err != nil {
		t.Fatalf("writeDefaultConfig() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# provider: gemini") {
		t.Error("default config should document the provider key")
	}

	// Template is all comments so it parses to an empty config
	cfg, err := loadConfigFromPath(path)
	if err != nil {
		t.Fatalf("default config should parse: %v", err)
	}
	if cfg.Provider != "" {
		t.Errorf("Provider = %q, want empty", cfg.Provider)
	}

	if _, err := writeDefaultConfig(dir); err == nil {
		t.Error("second writeDefaultConfig() should report existing file")
	}
}
