package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/voice-assistant/internal/upstream"
	"github.com/i474232898/voice-assistant/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *upstream.Client
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  upstream.New("openweathermap", client),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp     json.Number `json:"temp"`
			Humidity json.Number `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := p.client.GetJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Reading{}, err
	}

	switch {
	case payload.Name == "":
		return weather.Reading{}, fmt.Errorf("%w: missing city name", upstream.ErrMalformed)
	case payload.Main.Temp == "" || payload.Main.Humidity == "":
		return weather.Reading{}, fmt.Errorf("%w: missing main readings", upstream.ErrMalformed)
	case len(payload.Weather) == 0:
		return weather.Reading{}, fmt.Errorf("%w: missing weather description", upstream.ErrMalformed)
	}

	return weather.Reading{
		ProviderName: p.name,
		City:         payload.Name,
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		Description:  payload.Weather[0].Description,
	}, nil
}
