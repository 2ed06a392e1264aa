package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/news"
	"github.com/i474232898/voice-assistant/internal/reminder"
	"github.com/i474232898/voice-assistant/internal/weather"
)

// ErrEmptyTranscript is returned for blank transcripts.
var ErrEmptyTranscript = errors.New("transcript is empty")

type Reminders interface {
	CreateTitled(ctx context.Context, title string) (reminder.Reminder, error)
}

type Weather interface {
	Current(ctx context.Context, city string) (weather.Report, error)
}

type News interface {
	Headlines(ctx context.Context) ([]news.Headline, error)
}

// Response is what the assistant did, plus the sentence to speak back.
type Response struct {
	Intent   Intent            `json:"intent"`
	Reply    string            `json:"reply"`
	Reminder reminder.Reminder `json:"reminder,omitempty"`
	Weather  *weather.Report   `json:"weather,omitempty"`
	News     []news.Headline   `json:"news,omitempty"`
}

// Assistant runs parsed commands against the reminder, weather and news
// services.
type Assistant struct {
	reminders  Reminders
	weather    Weather
	news       News
	classifier Classifier
	logger     zerolog.Logger
}

// New creates an Assistant. classifier may be nil, in which case only the
// keyword rules are used.
func New(reminders Reminders, weather Weather, news News, classifier Classifier, logger zerolog.Logger) *Assistant {
	return &Assistant{
		reminders:  reminders,
		weather:    weather,
		news:       news,
		classifier: classifier,
		logger:     logger,
	}
}

// Handle interprets transcript and performs the matching action. Errors from
// the action are returned as is.
func (a *Assistant) Handle(ctx context.Context, transcript string) (Response, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Response{}, ErrEmptyTranscript
	}

	cmd := Parse(transcript)
	if cmd.Intent == IntentUnknown && a.classifier != nil {
		cmd = a.classify(ctx, transcript)
	}

	a.logger.Debug().
		Str("intent", string(cmd.Intent)).
		Str("transcript", transcript).
		Msg("command parsed")

	switch cmd.Intent {
	case IntentAddReminder:
		created, err := a.reminders.CreateTitled(ctx, cmd.Title)
		if err != nil {
			return Response{}, err
		}
		return Response{Intent: cmd.Intent, Reply: "Reminder set", Reminder: created}, nil

	case IntentWeather:
		if cmd.City == "" {
			return Response{Intent: cmd.Intent, Reply: "Which city?"}, nil
		}
		report, err := a.weather.Current(ctx, cmd.City)
		if err != nil {
			return Response{}, err
		}
		return Response{Intent: cmd.Intent, Reply: weatherReply(cmd.City, report), Weather: &report}, nil

	case IntentNews:
		headlines, err := a.news.Headlines(ctx)
		if err != nil {
			return Response{}, err
		}
		reply := "No news right now"
		if len(headlines) > 0 {
			reply = "Top news: " + headlines[0].Title
		}
		return Response{Intent: cmd.Intent, Reply: reply, News: headlines}, nil

	default:
		return Response{Intent: IntentUnknown, Reply: "I heard: " + transcript}, nil
	}
}

func (a *Assistant) classify(ctx context.Context, transcript string) Command {
	intent, err := a.classifier.Classify(ctx, transcript)
	if err != nil {
		a.logger.Warn().Err(err).Msg("intent classification failed")
		return Command{Intent: IntentUnknown}
	}
	return fromIntent(intent, transcript)
}

func weatherReply(city string, r weather.Report) string {
	if r.City != "" {
		city = r.City
	}
	detail := r.Desc
	if detail == "" {
		detail = r.Temp
	}
	return fmt.Sprintf("Weather in %s: %s", city, detail)
}
