package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/quocvuong92/voice-assistant/internal/api"
	"github.com/quocvuong92/voice-assistant/internal/config"
	"github.com/quocvuong92/voice-assistant/internal/realtime"
	"github.com/quocvuong92/voice-assistant/internal/speech"
)

// DefaultTTSTestText is spoken by ttstest when no text is given
const DefaultTTSTestText = "안녕하세요. 음성 출력 테스트입니다."

// pageSearcher is satisfied by *api.GoogleScraper
type pageSearcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]api.SearchResult, error)
}

// probe holds the lookups exercised by searchtest
type probe struct {
	clock     *realtime.Clock
	weather   realtime.WeatherSource
	city      string
	searchers []api.SearchClient
	scraper   pageSearcher
}

func newProbe(cfg *config.Config) probe {
	return probe{
		clock:     realtime.NewClock(cfg.Timezone),
		weather:   api.NewWeatherClient(cfg),
		city:      cfg.City,
		searchers: []api.SearchClient{api.NewNaverClient(cfg), api.NewBraveClient(cfg)},
		scraper:   api.NewGoogleScraper(cfg.RequestTimeout),
	}
}

// runSearchTest checks every live lookup once and prints one line each
func (app *App) runSearchTest(ctx context.Context, w io.Writer, p probe) {
	fmt.Fprintln(w, "🧪 API 연결 테스트 시작...")
	fmt.Fprintf(w, "⏰ 현재 시간: %s\n", p.clock.Describe())

	weather, err := p.weather.Current(ctx, p.city)
	switch {
	case err == nil:
		fmt.Fprintln(w, "✅ 날씨 API 연결 성공")
		fmt.Fprintf(w, "🌤️ %s\n", weather.Line())
	case errors.Is(err, api.ErrWeatherKeyMissing):
		fmt.Fprintln(w, "⚠️  날씨 API 키가 설정되지 않음")
	default:
		fmt.Fprintf(w, "❌ 날씨 API 연결 실패: %v\n", err)
	}

	for _, s := range p.searchers {
		if !s.Configured() {
			fmt.Fprintf(w, "⚠️  %s API 키가 설정되지 않음\n", s.Name())
			continue
		}
		results, err := s.Search(ctx, "테스트", api.SearchNews, 1)
		switch {
		case err != nil:
			fmt.Fprintf(w, "❌ %s API 연결 실패: %v\n", s.Name(), err)
		case len(results) == 0:
			fmt.Fprintf(w, "❌ %s API 연결 실패: 결과 없음\n", s.Name())
		default:
			fmt.Fprintf(w, "✅ %s API 연결 성공\n", s.Name())
		}
	}

	if p.scraper != nil {
		results, err := p.scraper.Search(ctx, "테스트")
		switch {
		case err != nil:
			fmt.Fprintf(w, "❌ %s 검색 연결 실패: %v\n", p.scraper.Name(), err)
		case len(results) == 0:
			fmt.Fprintf(w, "⚠️  %s 검색 결과 없음\n", p.scraper.Name())
		default:
			fmt.Fprintf(w, "✅ %s 검색 연결 성공\n", p.scraper.Name())
		}
	}

	fmt.Fprintln(w, "🧪 API 테스트 완료")
}

// runTTSTest speaks text, or DefaultTTSTestText when text is empty
func (app *App) runTTSTest(ctx context.Context, w io.Writer, sp *speech.Speaker, text string) error {
	if sp == nil {
		fmt.Fprintln(w, "⚠️  음성 출력을 사용할 수 없습니다 (Google Cloud 인증 정보 확인 또는 --no-speak 해제)")
		return speech.ErrNoCredentials
	}
	if text == "" {
		text = DefaultTTSTestText
	}
	fmt.Fprintf(w, "🔊 %s\n", text)
	if err := sp.Speak(ctx, text); err != nil {
		fmt.Fprintf(w, "❌ 음성 출력 실패: %v\n", err)
		return err
	}
	fmt.Fprintln(w, "✅ 음성 출력 완료")
	return nil
}

// transcribe turns a WAV file into text
func (app *App) transcribe(ctx context.Context, path string) (string, error) {
	tr, err := speech.NewGoogleTranscriber(ctx, app.cfg)
	if err != nil {
		return "", err
	}
	return tr.Transcribe(ctx, path)
}
