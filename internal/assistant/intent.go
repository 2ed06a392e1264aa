// Package assistant interprets spoken transcripts into reminder, weather and
// news actions.
package assistant

import (
	"regexp"
	"strings"

	"github.com/i474232898/voice-assistant/internal/common"
)

// Intent is the action a transcript asks for.
type Intent string

const (
	IntentUnknown     Intent = "unknown"
	IntentAddReminder Intent = "add_reminder"
	IntentWeather     Intent = "weather"
	IntentNews        Intent = "news"
)

var (
	remindMeRe    = regexp.MustCompile(`(?i)remind me (?:to )?(.*)`)
	setReminderRe = regexp.MustCompile(`(?i)set reminder (?:for )?(.*)`)
	weatherInRe   = regexp.MustCompile(`(?i)weather in ([\p{L} ]+)`)
)

// Command is a parsed transcript. Title is set for IntentAddReminder and City
// for IntentWeather when the transcript names one.
type Command struct {
	Intent Intent
	Title  string
	City   string
}

// Parse matches transcript against the keyword rules. Reminder phrases win
// over weather, weather over news.
func Parse(transcript string) Command {
	switch {
	case common.HasAny(transcript, "set reminder", "remind me"):
		return Command{Intent: IntentAddReminder, Title: reminderTitle(transcript)}
	case common.HasAny(transcript, "weather"):
		return Command{Intent: IntentWeather, City: weatherCity(transcript)}
	case common.HasAny(transcript, "news"):
		return Command{Intent: IntentNews}
	default:
		return Command{Intent: IntentUnknown}
	}
}

// fromIntent builds the command for an intent picked without keyword
// matching. The whole transcript becomes the reminder title.
func fromIntent(intent Intent, transcript string) Command {
	switch intent {
	case IntentAddReminder:
		return Command{Intent: intent, Title: strings.TrimSpace(transcript)}
	case IntentWeather:
		return Command{Intent: intent, City: weatherCity(transcript)}
	case IntentNews:
		return Command{Intent: intent}
	default:
		return Command{Intent: IntentUnknown}
	}
}

func reminderTitle(transcript string) string {
	for _, re := range []*regexp.Regexp{remindMeRe, setReminderRe} {
		if m := re.FindStringSubmatch(transcript); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				return title
			}
		}
	}
	return strings.TrimSpace(transcript)
}

func weatherCity(transcript string) string {
	m := weatherInRe.FindStringSubmatch(transcript)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
