package weather

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

// ErrNoProviders is returned when the service was built without providers.
var ErrNoProviders = errors.New("no weather providers configured")

// Service answers current-weather lookups from an ordered list of providers.
type Service struct {
	providers   []Provider
	defaultCity string
	logger      zerolog.Logger
}

// NewService creates a new Service. The first provider is the primary one;
// later providers are only asked when the earlier ones fail.
func NewService(providers []Provider, defaultCity string, logger zerolog.Logger) *Service {
	return &Service{
		providers:   providers,
		defaultCity: defaultCity,
		logger:      logger,
	}
}

// Current returns the weather for city, falling back to the default city when
// city is blank. The error of the last provider tried is returned when all fail.
func (s *Service) Current(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = s.defaultCity
	}

	if len(s.providers) == 0 {
		return Report{}, ErrNoProviders
	}

	var lastErr error
	for _, p := range s.providers {
		reading, err := p.Fetch(ctx, city)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("provider", p.Name()).
				Str("city", city).
				Str("category", upstream.Category(err)).
				Msg("weather provider failed")
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return reading.Report(), nil
	}

	return Report{}, lastErr
}
