package tts

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

// Service synthesizes speech into spool-backed clips.
type Service struct {
	synth  Synthesizer
	spool  *Spool
	logger zerolog.Logger
}

// NewService creates a new Service.
func NewService(synth Synthesizer, spool *Spool, logger zerolog.Logger) *Service {
	return &Service{
		synth:  synth,
		spool:  spool,
		logger: logger,
	}
}

// Speak synthesizes text into a new Clip positioned at its start. The caller
// owns the clip and must Close it; on error nothing is left in the spool.
func (s *Service) Speak(ctx context.Context, text string) (*Clip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	contentType := s.synth.ContentType()
	f, err := s.spool.create(extensionFor(contentType))
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	clip := &Clip{ContentType: contentType, file: f}

	if err := s.fill(ctx, clip, text); err != nil {
		_ = clip.Close()
		s.logger.Warn().
			Err(err).
			Str("engine", s.synth.Name()).
			Str("category", upstream.Category(err)).
			Msg("speech synthesis failed")
		return nil, err
	}

	s.logger.Debug().
		Str("engine", s.synth.Name()).
		Int64("bytes", clip.Size).
		Str("file", clip.Path()).
		Msg("speech synthesized")
	return clip, nil
}

func (s *Service) fill(ctx context.Context, clip *Clip, text string) error {
	if err := s.synth.Synthesize(ctx, text, clip.file); err != nil {
		return err
	}

	size, err := clip.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("measure audio: %w", err)
	}
	if size == 0 {
		return errEmptyAudio
	}
	if _, err := clip.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind audio: %w", err)
	}
	clip.Size = size
	return nil
}

// Sweep removes abandoned spool files older than maxAge.
func (s *Service) Sweep(maxAge time.Duration) (int, error) {
	return s.spool.Sweep(maxAge)
}
