package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		transcript string
		want       Command
	}{
		{"Remind me to call Mom", Command{Intent: IntentAddReminder, Title: "call Mom"}},
		{"remind me buy milk", Command{Intent: IntentAddReminder, Title: "buy milk"}},
		{"Set reminder for dentist at 5", Command{Intent: IntentAddReminder, Title: "dentist at 5"}},
		{"set reminder", Command{Intent: IntentAddReminder, Title: "set reminder"}},
		{"remind me to check the weather in Paris", Command{Intent: IntentAddReminder, Title: "check the weather in Paris"}},
		{"What's the weather in New York", Command{Intent: IntentWeather, City: "New York"}},
		{"weather in São Paulo?", Command{Intent: IntentWeather, City: "São Paulo"}},
		{"how is the weather", Command{Intent: IntentWeather}},
		{"read me the news", Command{Intent: IntentNews}},
		{"play some jazz", Command{Intent: IntentUnknown}},
	}

	for _, tc := range cases {
		t.Run(tc.transcript, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.transcript))
		})
	}
}

func TestFromIntent(t *testing.T) {
	assert.Equal(t, Command{Intent: IntentAddReminder, Title: "pay rent"}, fromIntent(IntentAddReminder, " pay rent "))
	assert.Equal(t, Command{Intent: IntentWeather}, fromIntent(IntentWeather, "is it cold outside"))
	assert.Equal(t, Command{Intent: IntentNews}, fromIntent(IntentNews, "what happened today"))
	assert.Equal(t, Command{Intent: IntentUnknown}, fromIntent(Intent("dance"), "dance"))
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, IntentWeather, parseLabel(" Weather. "))
	assert.Equal(t, IntentAddReminder, parseLabel("add_reminder"))
	assert.Equal(t, IntentUnknown, parseLabel("list_reminders"))
}
