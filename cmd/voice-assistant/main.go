package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/gorm"

	httpapi "github.com/i474232898/voice-assistant/internal/api/http"
	"github.com/i474232898/voice-assistant/internal/assistant"
	"github.com/i474232898/voice-assistant/internal/config"
	"github.com/i474232898/voice-assistant/internal/logger"
	"github.com/i474232898/voice-assistant/internal/news"
	"github.com/i474232898/voice-assistant/internal/notify"
	"github.com/i474232898/voice-assistant/internal/reminder"
	"github.com/i474232898/voice-assistant/internal/scheduler"
	"github.com/i474232898/voice-assistant/internal/store"
	"github.com/i474232898/voice-assistant/internal/tts"
	"github.com/i474232898/voice-assistant/internal/weather"
	"github.com/i474232898/voice-assistant/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Logging, httpapi.AppName)

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	reminderStore, db, err := openReminderStore(cfg.Reminders, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Reminders.Backend).Msg("failed to open reminder store")
	}
	if db != nil {
		defer closeDB(db, log)
	}
	reminders := reminder.NewService(reminderStore, log.With().Str("component", "reminders").Logger())

	// OpenWeatherMap first; the others only answer when it fails.
	provs := []weather.Provider{
		providers.NewOpenWeatherProvider(httpClient, cfg.Weather.APIKey),
	}
	if cfg.Weather.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.Weather.WeatherAPIKey))
	}
	if cfg.Weather.OpenMeteoFallback {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient))
	}
	weatherSvc := weather.NewService(provs, cfg.Weather.DefaultCity, log.With().Str("component", "weather").Logger())

	newsSvc := news.NewService(
		news.NewNewsAPIClient(httpClient, cfg.News.APIKey),
		cfg.News.Country,
		cfg.News.Limit,
		log.With().Str("component", "news").Logger(),
	)

	spool, err := tts.NewSpool(cfg.TTS.SpoolDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare speech spool")
	}
	synth, err := newSynthesizer(cfg.TTS, httpClient, spool)
	if err != nil {
		log.Fatal().Err(err).Str("engine", cfg.TTS.Engine).Msg("failed to set up speech engine")
	}
	speech := tts.NewService(synth, spool, log.With().Str("component", "tts").Logger())

	var classifier assistant.Classifier
	if cfg.OpenAI.APIKey != "" {
		classifier = assistant.NewOpenAIClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	assist := assistant.New(reminders, weatherSvc, newsSvc, classifier, log.With().Str("component", "assistant").Logger())

	sched := scheduler.New(cfg.Reminders.Location, log.With().Str("component", "scheduler").Logger()).
		WithSpoolSweep(speech, cfg.TTS.SweepInterval, cfg.TTS.SpoolMaxAge)
	if cfg.Twilio.DigestEnabled() {
		sender := notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		digest := notify.NewDigest(reminders, sender, cfg.Twilio.DigestTo, log.With().Str("component", "digest").Logger())
		sched.WithDigest(digest, cfg.Twilio.DigestCron)
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Options{
		CORSOrigins:  cfg.CORSOrigins,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, log.With().Str("component", "http").Logger())

	httpapi.RegisterRoutes(app, httpapi.Services{
		Reminders: reminders,
		Weather:   weatherSvc,
		News:      newsSvc,
		Speech:    speech,
		Assistant: assist,
	}, log)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("reminders", cfg.Reminders.Backend).
			Str("tts", synth.Name()).
			Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server stopped")
}

func openReminderStore(cfg config.Reminders, log zerolog.Logger) (reminder.Store, *gorm.DB, error) {
	clock := reminder.LocalClock(cfg.Location)

	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(clock), nil, nil
	case "sql":
		db, err := store.OpenSQL(cfg.DatabaseURL, cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQLStore(db, clock)
		if err != nil {
			closeDB(db, log)
			return nil, nil, err
		}
		return s, db, nil
	default:
		return store.NewFileStore(cfg.File, clock, log.With().Str("component", "store").Logger()), nil, nil
	}
}

func newSynthesizer(cfg config.TTS, httpClient *http.Client, spool *tts.Spool) (tts.Synthesizer, error) {
	switch cfg.Engine {
	case "command":
		exec, err := tts.NewExecutor(cfg.Command, cfg.CommandTimeout)
		if err != nil {
			return nil, fmt.Errorf("tts command %q: %w", cfg.Command, err)
		}
		return tts.NewCommandSynthesizer(exec, cfg.CommandArgList(), cfg.CommandMIME, spool.Dir()), nil
	default:
		return tts.NewGoogleSynthesizer(httpClient, cfg.Lang), nil
	}
}

func closeDB(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
}
