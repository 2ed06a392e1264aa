package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/i474232898/voice-assistant/internal/upstream"
)

// maxChunkLen is the longest text the translate endpoint accepts per request.
const maxChunkLen = 100

// GoogleSynthesizer uses the Google Translate speech endpoint, the same one
// gTTS talks to. Long text is split into chunks whose MP3 frames are
// concatenated in order.
type GoogleSynthesizer struct {
	lang    string
	baseURL string
	client  *upstream.Client
}

func NewGoogleSynthesizer(client *http.Client, lang string) *GoogleSynthesizer {
	return &GoogleSynthesizer{
		lang:    lang,
		baseURL: "https://translate.google.com/translate_tts",
		client:  upstream.New("google-tts", client),
	}
}

func (g *GoogleSynthesizer) Name() string {
	return "google"
}

func (g *GoogleSynthesizer) ContentType() string {
	return "audio/mp3"
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string, w io.Writer) error {
	chunks := splitText(text)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, chunk, i, len(chunks), w); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	values := url.Values{}
	values.Set("ie", "UTF-8")
	values.Set("client", "tw-ob")
	values.Set("tl", g.lang)
	values.Set("q", chunk)
	values.Set("total", strconv.Itoa(total))
	values.Set("idx", strconv.Itoa(idx))
	values.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	resp, err := g.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set("Referer", "https://translate.google.com/")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	if n == 0 {
		return errEmptyAudio
	}
	return nil
}

// splitText breaks text at sentence punctuation, then packs words into chunks
// of at most maxChunkLen runes. Words longer than that are cut.
func splitText(text string) []string {
	var chunks []string
	for _, sentence := range splitSentences(text) {
		chunks = append(chunks, packWords(strings.Fields(sentence))...)
	}
	return chunks
}

func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if !strings.ContainsRune(".!?;:", r) {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		start = i + 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func packWords(words []string) []string {
	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for _, word := range words {
		w := []rune(word)
		for len(w) > maxChunkLen {
			flush()
			chunks = append(chunks, string(w[:maxChunkLen]))
			w = w[maxChunkLen:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > maxChunkLen {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return chunks
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
