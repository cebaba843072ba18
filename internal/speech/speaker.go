package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/quocvuong92/voice-assistant/internal/constants"
	"github.com/quocvuong92/voice-assistant/internal/feed"
	"github.com/quocvuong92/voice-assistant/internal/logging"
)

// unspeakable matches everything except letters, digits, underscore,
// whitespace and basic punctuation
var unspeakable = regexp.MustCompile(`[^\p{L}\p{N}_\s.,?!]`)

// CleanText removes characters that should not be read aloud
func CleanText(text string) string {
	text = strings.ToValidUTF8(text, "")
	return strings.TrimSpace(unspeakable.ReplaceAllString(text, ""))
}

// Speaker synthesizes text, plays it and removes the temporary file
type Speaker struct {
	synth  Synthesizer
	player Player
	sender feed.Sender
	dir    string
	prefix string
	log    *logging.FieldLogger
}

// NewSpeaker creates a speaker writing temp files to os.TempDir. A nil
// sender discards status messages.
func NewSpeaker(synth Synthesizer, player Player, sender feed.Sender) *Speaker {
	if sender == nil {
		sender = feed.Discard{}
	}
	return &Speaker{
		synth:  synth,
		player: player,
		sender: sender,
		dir:    os.TempDir(),
		prefix: constants.DefaultAudioPrefix,
		log:    logging.Component("speech"),
	}
}

// Speak reads text aloud and blocks until playback finishes. Text that is
// empty after cleaning is silently skipped.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil
	}

	audio, err := s.synth.Synthesize(ctx, cleaned)
	if err != nil {
		s.log.Error("synthesis failed", err)
		s.sender.Send(feed.CategoryStatus, "TTS 오류")
		return err
	}

	path := filepath.Join(s.dir, s.prefix+uuid.New().String()+".wav")
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove audio file", logging.Fields{"path": path, "error": err.Error()})
		}
	}()

	if err := os.WriteFile(path, audio, 0600); err != nil {
		s.sender.Send(feed.CategoryStatus, "TTS 오류")
		return fmt.Errorf("speech: failed to write audio: %w", err)
	}

	s.sender.Send(feed.CategoryStatus, "음성 재생 중...")
	if err := s.player.Play(ctx, path); err != nil {
		s.log.Warn("playback failed", logging.Fields{"error": err.Error()})
		s.sender.Send(feed.CategoryStatus, "음성 재생 실패")
		return err
	}
	s.sender.Send(feed.CategoryStatus, "음성 재생 완료")
	return nil
}
