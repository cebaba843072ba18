// Package speech turns answers into audio and audio files into text using
// Google Cloud Text-to-Speech and Speech-to-Text.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	sttapi "google.golang.org/api/speech/v1"
	ttsapi "google.golang.org/api/texttospeech/v1"

	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/constants"
)

// Sentinel errors
var (
	// ErrNoCredentials is returned when neither a service account file nor an API key is configured
	ErrNoCredentials = errors.New("speech: Google Cloud credentials not configured")

	// ErrNoSpeech is returned when a recording contains no recognizable speech
	ErrNoSpeech = errors.New("speech: no speech recognized")

	// ErrEmptyAudio is returned when synthesis yields no audio
	ErrEmptyAudio = errors.New("speech: empty audio content")
)

// Synthesizer converts text to playable audio bytes
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts a recording to text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

var (
	_ Synthesizer = (*GoogleSynthesizer)(nil)
	_ Transcriber = (*GoogleTranscriber)(nil)
)

// clientOptions builds authentication options from cfg. Extra options are
// appended and take precedence; with extras present credentials are optional.
func clientOptions(cfg *config.Config, extra []option.ClientOption) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case cfg.GoogleCredentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
	case cfg.GoogleAPIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	case len(extra) == 0:
		return nil, ErrNoCredentials
	}
	return append(opts, extra...), nil
}

// GoogleSynthesizer calls the Text-to-Speech text:synthesize method
type GoogleSynthesizer struct {
	svc          *ttsapi.Service
	languageCode string
	voiceName    string
	speakingRate float64
	pitch        float64
	volumeGainDb float64
}

// NewGoogleSynthesizer creates a synthesizer using the configured voice
func NewGoogleSynthesizer(ctx context.Context, cfg *config.Config, extra ...option.ClientOption) (*GoogleSynthesizer, error) {
	opts, err := clientOptions(cfg, extra)
	if err != nil {
		return nil, err
	}
	svc, err := ttsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to create text-to-speech client: %w", err)
	}

	s := &GoogleSynthesizer{
		svc:          svc,
		languageCode: cfg.LanguageCode,
		voiceName:    cfg.VoiceName,
		speakingRate: cfg.SpeakingRate,
		pitch:        cfg.Pitch,
		volumeGainDb: cfg.VolumeGainDb,
	}
	if s.languageCode == "" {
		s.languageCode = constants.DefaultLanguageCode
	}
	if s.voiceName == "" {
		s.voiceName = constants.DefaultVoiceName
	}
	return s, nil
}

// Synthesize returns LINEAR16 WAV audio for text
func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultSpeechTimeout)
	defer cancel()

	req := &ttsapi.SynthesizeSpeechRequest{
		Input: &ttsapi.SynthesisInput{Text: text},
		Voice: &ttsapi.VoiceSelectionParams{
			LanguageCode: s.languageCode,
			Name:         s.voiceName,
			SsmlGender:   "FEMALE",
		},
		AudioConfig: &ttsapi.AudioConfig{
			AudioEncoding: "LINEAR16",
			SpeakingRate:  s.speakingRate,
			Pitch:         s.pitch,
			VolumeGainDb:  s.volumeGainDb,
		},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize failed: %w", err)
	}
	if resp.AudioContent == "" {
		return nil, ErrEmptyAudio
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("speech: invalid audio content: %w", err)
	}
	return audio, nil
}

// GoogleTranscriber calls the Speech-to-Text speech:recognize method for
// 16 kHz LINEAR16 recordings
type GoogleTranscriber struct {
	svc          *sttapi.Service
	languageCode string
	sampleRate   int64
}

// NewGoogleTranscriber creates a transcriber for the configured language
func NewGoogleTranscriber(ctx context.Context, cfg *config.Config, extra ...option.ClientOption) (*GoogleTranscriber, error) {
	opts, err := clientOptions(cfg, extra)
	if err != nil {
		return nil, err
	}
	svc, err := sttapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech: failed to create speech-to-text client: %w", err)
	}

	t := &GoogleTranscriber{svc: svc, languageCode: cfg.LanguageCode, sampleRate: 16000}
	if t.languageCode == "" {
		t.languageCode = constants.DefaultLanguageCode
	}
	return t, nil
}

// Transcribe returns the best transcript for the WAV file at path
func (t *GoogleTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("speech: failed to read recording: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultSpeechTimeout)
	defer cancel()

	req := &sttapi.RecognizeRequest{
		Config: &sttapi.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: t.sampleRate,
			LanguageCode:    t.languageCode,
		},
		Audio: &sttapi.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(data)},
	}

	resp, err := t.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("speech: recognize failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			if text := strings.TrimSpace(result.Alternatives[0].Transcript); text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}
