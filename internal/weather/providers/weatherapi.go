package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/voice-assistant/internal/upstream"
	"github.com/i474232898/voice-assistant/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *upstream.Client
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  upstream.New("weatherapi", client),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", city)

	var payload struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			TempC     json.Number `json:"temp_c"`
			Humidity  json.Number `json:"humidity"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := p.client.GetJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Reading{}, err
	}

	if payload.Location.Name == "" || payload.Current.TempC == "" || payload.Current.Humidity == "" {
		return weather.Reading{}, fmt.Errorf("%w: incomplete current weather", upstream.ErrMalformed)
	}

	// WeatherAPI capitalizes its condition text ("Partly cloudy"); OpenWeatherMap
	// descriptions are lower case, so normalize to match.
	return weather.Reading{
		ProviderName: p.name,
		City:         payload.Location.Name,
		TemperatureC: payload.Current.TempC,
		HumidityPct:  payload.Current.Humidity,
		Description:  strings.ToLower(strings.TrimSpace(payload.Current.Condition.Text)),
	}, nil
}
