// Package tts turns text into an audio clip backed by a transient spool file.
package tts

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrEmptyText is returned before any engine is invoked.
	ErrEmptyText = errors.New("no text provided")

	errEmptyAudio = errors.New("synthesizer produced no audio")
)

// Synthesizer converts text to encoded audio written to w.
type Synthesizer interface {
	Name() string
	// ContentType is the MIME type of the audio written by Synthesize.
	ContentType() string
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// extensionFor picks a spool file extension for a MIME type.
func extensionFor(contentType string) string {
	switch contentType {
	case "audio/mp3", "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/flac":
		return ".flac"
	default:
		return ".audio"
	}
}
