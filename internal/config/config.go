package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// PlaceholderAPIKey is used when an upstream key is not configured. Calls made
// with it fail upstream, never at startup.
const PlaceholderAPIKey = "your-api-key"

// AppConfig is the process configuration. Groups are embedded and squashed so
// every field maps to a flat environment variable (lower-cased by koanf).
type AppConfig struct {
	Server    `koanf:",squash"`
	Logging   `koanf:",squash"`
	Weather   `koanf:",squash"`
	News      `koanf:",squash"`
	Reminders `koanf:",squash"`
	TTS       `koanf:",squash"`
	OpenAI    `koanf:",squash"`
	Twilio    `koanf:",squash"`
}

type Server struct {
	Env         string        `koanf:"app_env" validate:"required"`
	Port        string        `koanf:"port" validate:"required,numeric"`
	HTTPTimeout time.Duration `koanf:"http_timeout" validate:"gt=0"`
	CORSOrigins string        `koanf:"cors_allow_origins" validate:"required"`
}

type Logging struct {
	Level      string `koanf:"log_level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"log_format" validate:"omitempty,oneof=console json"`
	File       string `koanf:"log_file"`
	MaxSizeMB  int    `koanf:"log_max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"log_max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"log_max_age_days" validate:"gte=0"`
}

type Weather struct {
	APIKey            string `koanf:"weather_api_key"`
	WeatherAPIKey     string `koanf:"weatherapi_api_key"`
	OpenMeteoFallback bool   `koanf:"weather_openmeteo_fallback"`
	DefaultCity       string `koanf:"weather_default_city" validate:"required"`
}

type News struct {
	APIKey  string `koanf:"news_api_key"`
	Country string `koanf:"news_country" validate:"required,len=2"`
	Limit   int    `koanf:"news_limit" validate:"gte=1,lte=100"`
}

type Reminders struct {
	Backend     string `koanf:"reminders_backend" validate:"oneof=file memory sql"`
	File        string `koanf:"reminders_file" validate:"required_if=Backend file"`
	DatabaseURL string `koanf:"database_url"`
	SQLitePath  string `koanf:"sqlite_path"`
	Timezone    string `koanf:"timezone" validate:"required"`

	// Location is resolved from Timezone by Load.
	Location *time.Location `koanf:"-"`
}

type TTS struct {
	Engine         string        `koanf:"tts_engine" validate:"oneof=google command"`
	Lang           string        `koanf:"tts_lang" validate:"required"`
	Command        string        `koanf:"tts_command" validate:"required_if=Engine command"`
	CommandArgs    string        `koanf:"tts_command_args"`
	CommandMIME    string        `koanf:"tts_command_mime"`
	CommandTimeout time.Duration `koanf:"tts_command_timeout" validate:"gt=0"`
	SpoolDir       string        `koanf:"tts_spool_dir" validate:"required"`
	SpoolMaxAge    time.Duration `koanf:"tts_spool_max_age" validate:"gt=0"`
	SweepInterval  time.Duration `koanf:"tts_sweep_interval" validate:"gt=0"`
}

type OpenAI struct {
	APIKey string `koanf:"openai_api_key"`
	Model  string `koanf:"openai_model"`
}

type Twilio struct {
	AccountSID string `koanf:"twilio_account_sid"`
	AuthToken  string `koanf:"twilio_auth_token"`
	From       string `koanf:"twilio_from"`
	DigestTo   string `koanf:"digest_to"`
	DigestCron string `koanf:"digest_cron"`
}

// DigestEnabled reports whether every setting the reminder digest needs is present.
func (t Twilio) DigestEnabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != "" && t.DigestTo != "" && t.DigestCron != ""
}

// IsProduction reports whether APP_ENV is production.
func (s Server) IsProduction() bool {
	return s.Env == "production"
}

// CommandArgList splits TTS_COMMAND_ARGS on whitespace.
func (t TTS) CommandArgList() []string {
	return strings.Fields(t.CommandArgs)
}

var validate = validator.New()

// Defaults returns the configuration used when no environment is set.
func Defaults() *AppConfig {
	return &AppConfig{
		Server: Server{
			Env:         "development",
			Port:        "5000",
			HTTPTimeout: 10 * time.Second,
			CORSOrigins: "*",
		},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Weather: Weather{
			APIKey:      PlaceholderAPIKey,
			DefaultCity: "London",
		},
		News: News{
			APIKey:  PlaceholderAPIKey,
			Country: "us",
			Limit:   5,
		},
		Reminders: Reminders{
			Backend:    "file",
			File:       "reminders.json",
			SQLitePath: "reminders.db",
			Timezone:   "Local",
		},
		TTS: TTS{
			Engine:         "google",
			Lang:           "en",
			CommandMIME:    "audio/wav",
			CommandTimeout: 30 * time.Second,
			SpoolDir:       filepath.Join(os.TempDir(), "voice-assistant-tts"),
			SpoolMaxAge:    time.Hour,
			SweepInterval:  15 * time.Minute,
		},
		OpenAI: OpenAI{
			Model: "gpt-4o-mini",
		},
		Twilio: Twilio{
			DigestCron: "0 8 * * *",
		},
	}
}

// Load reads configuration from the environment (and an optional .env file)
// on top of Defaults, then validates it.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*AppConfig, error) {
	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Empty variables should not wipe out the placeholder keys.
	if cfg.Weather.APIKey == "" {
		cfg.Weather.APIKey = PlaceholderAPIKey
	}
	if cfg.News.APIKey == "" {
		cfg.News.APIKey = PlaceholderAPIKey
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
		if cfg.Server.IsProduction() {
			cfg.Logging.Format = "json"
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Reminders.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Reminders.Timezone, err)
	}
	cfg.Reminders.Location = loc

	return cfg, nil
}
