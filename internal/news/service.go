package news

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

// Service returns the first few top headlines for a fixed country.
type Service struct {
	source  Source
	country string
	limit   int
	logger  zerolog.Logger
}

// NewService creates a new Service.
func NewService(source Source, country string, limit int, logger zerolog.Logger) *Service {
	return &Service{
		source:  source,
		country: country,
		limit:   limit,
		logger:  logger,
	}
}

// Headlines returns at most limit headlines, in upstream order.
func (s *Service) Headlines(ctx context.Context) ([]Headline, error) {
	articles, err := s.source.TopHeadlines(ctx, s.country)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("country", s.country).
			Str("category", upstream.Category(err)).
			Msg("news fetch failed")
		return nil, err
	}

	if len(articles) > s.limit {
		articles = articles[:s.limit]
	}

	headlines := make([]Headline, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, a.Headline())
	}
	return headlines, nil
}
