package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/voice-assistant/internal/assistant"
	"github.com/i474232898/voice-assistant/internal/news"
	"github.com/i474232898/voice-assistant/internal/reminder"
	"github.com/i474232898/voice-assistant/internal/tts"
	"github.com/i474232898/voice-assistant/internal/upstream"
	"github.com/i474232898/voice-assistant/internal/weather"
)

var validate = validator.New()

const noTextMessage = "No text provided"

type ReminderService interface {
	List(ctx context.Context) ([]reminder.Reminder, error)
	Create(ctx context.Context, fields reminder.Reminder) (reminder.Reminder, error)
}

type WeatherService interface {
	Current(ctx context.Context, city string) (weather.Report, error)
}

type NewsService interface {
	Headlines(ctx context.Context) ([]news.Headline, error)
}

type SpeechService interface {
	Speak(ctx context.Context, text string) (*tts.Clip, error)
}

type CommandService interface {
	Handle(ctx context.Context, transcript string) (assistant.Response, error)
}

// Services are the handlers' dependencies.
type Services struct {
	Reminders ReminderService
	Weather   WeatherService
	News      NewsService
	Speech    SpeechService
	Assistant CommandService
}

type handlers struct {
	Services
	logger zerolog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svcs Services, logger zerolog.Logger) {
	h := &handlers{Services: svcs, logger: logger}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": AppName,
		})
	})

	api := app.Group("/api")
	api.Get("/reminders", h.listReminders)
	api.Post("/reminders", h.createReminder)
	api.Get("/weather", h.currentWeather)
	api.Get("/news", h.topNews)
	api.Post("/tts", h.speak)
	api.Post("/command", h.command)
}

func (h *handlers) listReminders(c *fiber.Ctx) error {
	reminders, err := h.Reminders.List(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(reminders)
}

func (h *handlers) createReminder(c *fiber.Ctx) error {
	fields, err := reminder.Parse(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	created, err := h.Reminders.Create(c.UserContext(), fields)
	if err != nil {
		if errors.Is(err, reminder.ErrInvalidPayload) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}
	return c.JSON(created)
}

func (h *handlers) currentWeather(c *fiber.Ctx) error {
	report, err := h.Weather.Current(c.UserContext(), c.Query("city"))
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(report)
}

func (h *handlers) topNews(c *fiber.Ctx) error {
	headlines, err := h.News.Headlines(c.UserContext())
	if err != nil {
		return h.internalError(c, err)
	}
	return c.JSON(headlines)
}

type speakRequest struct {
	Text string `json:"text"`
}

// speak answers with plain text errors; browsers play the body directly.
func (h *handlers) speak(c *fiber.Ctx) error {
	var req speakRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).SendString(noTextMessage)
	}

	clip, err := h.Speech.Speak(c.UserContext(), req.Text)
	if err != nil {
		if errors.Is(err, tts.ErrEmptyText) {
			return c.Status(fiber.StatusBadRequest).SendString(noTextMessage)
		}
		h.logFailure(c, err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	// fasthttp closes the stream once written, which deletes the spool file.
	c.Set(fiber.HeaderContentType, clip.ContentType)
	return c.SendStream(clip, int(clip.Size))
}

type commandRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

func (h *handlers) command(c *fiber.Ctx) error {
	var req commandRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.Assistant.Handle(c.UserContext(), req.Transcript)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyTranscript) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}
	return c.JSON(resp)
}

func (h *handlers) internalError(c *fiber.Ctx, err error) error {
	h.logFailure(c, err)
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

func (h *handlers) logFailure(c *fiber.Ctx, err error) {
	requestID, _ := c.Locals("requestid").(string)
	event := h.logger.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID)
	if category := upstream.Category(err); category != "network" {
		event = event.Str("category", category)
	}
	event.Msg("request failed")
}
