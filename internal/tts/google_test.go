package tts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

func TestSplitTextShort(t *testing.T) {
	assert.Equal(t, []string{"Hello world"}, splitText("  Hello   world "))
	assert.Empty(t, splitText("   "))
}

func TestSplitTextSentences(t *testing.T) {
	got := splitText("Reminder set. Weather in London: light rain!")
	assert.Equal(t, []string{"Reminder set.", "Weather in London:", "light rain!"}, got)

	// Punctuation inside a token does not split it.
	assert.Equal(t, []string{"It costs 3.50 today"}, splitText("It costs 3.50 today"))
}

func TestSplitTextNeverExceedsLimit(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 40) + strings.Repeat("x", 250) + " tail"

	chunks := splitText(long)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), maxChunkLen, c)
		assert.NotEmpty(t, c)
	}

	joined := strings.Join(chunks, "")
	assert.Equal(t, strings.ReplaceAll(long, " ", ""), strings.ReplaceAll(joined, " ", ""),
		"chunking must keep every character in order")
}

func TestSplitTextMultibyte(t *testing.T) {
	chunks := splitText(strings.Repeat("ü", 150))
	require.Len(t, chunks, 2)
	assert.Equal(t, 100, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 50, utf8.RuneCountInString(chunks[1]))
}

func TestGoogleSynthesizeConcatenatesChunks(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "en", q.Get("tl"))
		assert.Equal(t, "tw-ob", q.Get("client"))
		assert.Equal(t, "2", q.Get("total"))

		mu.Lock()
		queries = append(queries, q.Get("q"))
		mu.Unlock()

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("[" + q.Get("idx") + "]"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.Client(), "en")
	g.baseURL = srv.URL

	var buf bytes.Buffer
	require.NoError(t, g.Synthesize(context.Background(), "Hello there. General Kenobi", &buf))

	assert.Equal(t, "[0][1]", buf.String())
	assert.Equal(t, []string{"Hello there.", "General Kenobi"}, queries)
	assert.Equal(t, "audio/mp3", g.ContentType())
}

func TestGoogleSynthesizeUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.Client(), "en")
	g.baseURL = srv.URL

	err := g.Synthesize(context.Background(), "hello", &bytes.Buffer{})
	assert.ErrorIs(t, err, upstream.ErrRateLimited)
}

func TestGoogleSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.Client(), "en")
	g.baseURL = srv.URL

	err := g.Synthesize(context.Background(), "hello", &bytes.Buffer{})
	assert.ErrorIs(t, err, errEmptyAudio)
}
