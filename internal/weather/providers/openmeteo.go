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

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key: the city is geocoded first, then current conditions
// are read for the coordinates.
type OpenMeteoProvider struct {
	name       string
	baseURL    string
	geocodeURL string
	client     *upstream.Client
	geocoder   *upstream.Client
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:       "openmeteo",
		baseURL:    "https://api.open-meteo.com/v1/forecast",
		geocodeURL: "https://geocoding-api.open-meteo.com/v1/search",
		client:     upstream.New("openmeteo", client),
		geocoder:   upstream.New("openmeteo-geocoding", client),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type place struct {
	Name      string      `json:"name"`
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	loc, err := p.geocode(ctx, city)
	if err != nil {
		return weather.Reading{}, err
	}

	values := url.Values{}
	values.Set("latitude", loc.Latitude.String())
	values.Set("longitude", loc.Longitude.String())
	values.Set("current", "temperature_2m,relative_humidity_2m,weather_code")

	var payload struct {
		Current *struct {
			Temperature json.Number `json:"temperature_2m"`
			Humidity    json.Number `json:"relative_humidity_2m"`
			WeatherCode *int        `json:"weather_code"`
		} `json:"current"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Reading{}, err
	}

	cur := payload.Current
	if cur == nil || cur.Temperature == "" || cur.Humidity == "" || cur.WeatherCode == nil {
		return weather.Reading{}, fmt.Errorf("%w: missing current readings", upstream.ErrMalformed)
	}

	return weather.Reading{
		ProviderName: p.name,
		City:         loc.Name,
		TemperatureC: cur.Temperature,
		HumidityPct:  cur.Humidity,
		Description:  describeWeatherCode(*cur.WeatherCode),
	}, nil
}

func (p *OpenMeteoProvider) geocode(ctx context.Context, city string) (place, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("format", "json")

	var payload struct {
		Results []place `json:"results"`
	}
	if err := p.geocoder.GetJSON(ctx, p.geocodeURL+"?"+values.Encode(), &payload); err != nil {
		return place{}, err
	}
	if len(payload.Results) == 0 {
		return place{}, fmt.Errorf("%w: city %q not found", upstream.ErrUnexpectedStatus, city)
	}

	loc := payload.Results[0]
	if loc.Latitude == "" || loc.Longitude == "" {
		return place{}, fmt.Errorf("%w: geocoding result without coordinates", upstream.ErrMalformed)
	}
	if loc.Name == "" {
		loc.Name = city
	}
	return loc, nil
}

// describeWeatherCode maps WMO weather interpretation codes to the short
// lowercase phrases OpenWeatherMap uses.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code == 1:
		return "mainly clear"
	case code == 2:
		return "partly cloudy"
	case code == 3:
		return "overcast clouds"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
