package config

import (
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWith(t *testing.T, vars map[string]string) (*AppConfig, error) {
	t.Helper()

	// Keys are set directly so the host environment cannot leak into the
	// assertions; Load only adds the env provider in front of this.
	k := koanf.New(".")
	for key, value := range vars {
		require.NoError(t, k.Set(strings.ToLower(key), value))
	}
	return fromKoanf(k)
}

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(t, nil)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, PlaceholderAPIKey, cfg.Weather.APIKey)
	assert.Equal(t, PlaceholderAPIKey, cfg.News.APIKey)
	assert.Equal(t, "London", cfg.Weather.DefaultCity)
	assert.Equal(t, "us", cfg.News.Country)
	assert.Equal(t, 5, cfg.News.Limit)
	assert.Equal(t, "file", cfg.Reminders.Backend)
	assert.Equal(t, "reminders.json", cfg.Reminders.File)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotNil(t, cfg.Reminders.Location)
	assert.False(t, cfg.Twilio.DigestEnabled())
	assert.False(t, cfg.Weather.OpenMeteoFallback)
}

func TestOverrides(t *testing.T) {
	cfg, err := loadWith(t, map[string]string{
		"WEATHER_API_KEY":   "w-key",
		"NEWS_LIMIT":        "3",
		"HTTP_TIMEOUT":      "2s",
		"APP_ENV":           "production",
		"TIMEZONE":          "UTC",
		"TTS_ENGINE":        "command",
		"TTS_COMMAND":       "/usr/bin/espeak-ng",
		"TTS_COMMAND_ARGS":  "-w {output}",
		"REMINDERS_BACKEND": "memory",

		"WEATHER_OPENMETEO_FALLBACK": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "w-key", cfg.Weather.APIKey)
	assert.Equal(t, 3, cfg.News.Limit)
	assert.Equal(t, 2*time.Second, cfg.Server.HTTPTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.UTC, cfg.Reminders.Location)
	assert.Equal(t, []string{"-w", "{output}"}, cfg.TTS.CommandArgList())
	assert.Equal(t, "memory", cfg.Reminders.Backend)
	assert.True(t, cfg.Weather.OpenMeteoFallback)
}

func TestInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":      {"REMINDERS_BACKEND": "redis"},
		"unknown engine":       {"TTS_ENGINE": "festival"},
		"command without path": {"TTS_ENGINE": "command"},
		"bad log level":        {"LOG_LEVEL": "verbose"},
		"bad timezone":         {"TIMEZONE": "Mars/Olympus"},
		"zero news limit":      {"NEWS_LIMIT": "0"},
		"non numeric port":     {"PORT": "http"},
		"unparseable duration": {"HTTP_TIMEOUT": "soon"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadWith(t, vars)
			assert.Error(t, err)
		})
	}
}

func TestDigestEnabled(t *testing.T) {
	tw := Twilio{AccountSID: "AC1", AuthToken: "tok", From: "+1555", DigestTo: "+1666", DigestCron: "0 8 * * *"}
	assert.True(t, tw.DigestEnabled())

	tw.DigestTo = ""
	assert.False(t, tw.DigestEnabled())
}
