package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/quocvuong92/voice-assistant/internal/config"
)

// OpenWeatherURL is the current-conditions endpoint
const OpenWeatherURL = "http://api.openweathermap.org/data/2.5/weather"

// ErrWeatherKeyMissing is returned when no OpenWeatherMap key is configured
var ErrWeatherKeyMissing = errors.New("weather API key not configured")

// Weather holds current conditions for a city in metric units
type Weather struct {
	City        string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Description string
}

// Line renders the conditions as a single fact line
func (w *Weather) Line() string {
	return fmt.Sprintf("날씨: %s 온도: %s°C, %s, 습도 %d%%, 체감온도 %s°C",
		w.City, formatTemp(w.Temperature), w.Description, w.Humidity, formatTemp(w.FeelsLike))
}

func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Message string `json:"message"`
}

// WeatherClient is the OpenWeatherMap client
type WeatherClient struct {
	*BaseSearchClient
	baseURL string
	apiKey  string
}

// NewWeatherClient creates a new weather client
func NewWeatherClient(cfg *config.Config) *WeatherClient {
	return &WeatherClient{
		BaseSearchClient: NewBaseSearchClient(nil, "OpenWeatherMap", cfg.RequestTimeout),
		baseURL:          OpenWeatherURL,
		apiKey:           cfg.WeatherAPIKey,
	}
}

// Configured reports whether an API key is present
func (c *WeatherClient) Configured() bool {
	return c.apiKey != ""
}

// Current fetches conditions for city with Korean descriptions
func (c *WeatherClient) Current(ctx context.Context, city string) (*Weather, error) {
	if !c.Configured() {
		return nil, ErrWeatherKeyMissing
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "kr")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data openWeatherResponse
	parseErr := json.Unmarshal(body, &data)

	if resp.StatusCode != http.StatusOK {
		errMsg := fmt.Sprintf("status code %d", resp.StatusCode)
		if parseErr == nil && data.Message != "" {
			errMsg = data.Message
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Provider:   "openweathermap",
			Message:    fmt.Sprintf("Weather API error: %s", errMsg),
		}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}

	w := &Weather{
		City:        city,
		Temperature: data.Main.Temp,
		FeelsLike:   data.Main.FeelsLike,
		Humidity:    data.Main.Humidity,
	}
	if len(data.Weather) > 0 {
		w.Description = strings.TrimSpace(data.Weather[0].Description)
	}
	return w, nil
}
