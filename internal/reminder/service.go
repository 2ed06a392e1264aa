package reminder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service is the reminder use-case layer on top of a Store.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a new Service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// List returns every stored reminder in insertion order. It never returns a
// nil slice on success.
func (s *Service) List(ctx context.Context) ([]Reminder, error) {
	reminders, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders, nil
}

// Create stores fields as a new reminder and returns it with id and time.
func (s *Service) Create(ctx context.Context, fields Reminder) (Reminder, error) {
	if fields == nil {
		return nil, ErrInvalidPayload
	}

	created, err := s.store.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	s.logger.Info().
		Int("id", created.ID()).
		Str("time", created.Time()).
		Msg("reminder created")
	return created, nil
}

// CreateTitled is a shortcut for reminders that only carry a title, as
// created from voice commands.
func (s *Service) CreateTitled(ctx context.Context, title string) (Reminder, error) {
	return s.Create(ctx, Reminder{FieldTitle: title})
}
