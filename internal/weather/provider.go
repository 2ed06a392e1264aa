package weather

import (
	"context"
)

// Provider abstracts a current-weather source (e.g. OpenWeatherMap, WeatherAPI).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Reading, error)
}
