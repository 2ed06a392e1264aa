package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Classifier picks an intent for transcripts the keyword rules do not match.
type Classifier interface {
	Classify(ctx context.Context, transcript string) (Intent, error)
}

var errNoCompletion = errors.New("no completion received")

const classifyPrompt = "Classify the request for a voice assistant. Reply with exactly one label: " +
	"add_reminder, weather, news, or unknown."

// OpenAIClassifier asks a chat model for one of the known intent labels.
type OpenAIClassifier struct {
	client  *openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

func NewOpenAIClassifier(apiKey, model string, opts ...option.RequestOption) *OpenAIClassifier {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	chatModel := openai.ChatModelGPT4oMini
	if model != "" {
		chatModel = openai.ChatModel(model)
	}
	return &OpenAIClassifier{
		client:  &client,
		model:   chatModel,
		timeout: 10 * time.Second,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, transcript string) (Intent, error) {
	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(classifyPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(transcript),
					},
				},
			},
		},
		Temperature:         openai.Float(0.0),
		MaxCompletionTokens: openai.Int(8),
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return IntentUnknown, fmt.Errorf("classify transcript: %w", err)
	}
	if len(resp.Choices) == 0 {
		return IntentUnknown, errNoCompletion
	}
	return parseLabel(resp.Choices[0].Message.Content), nil
}

func parseLabel(label string) Intent {
	label = strings.Trim(strings.ToLower(strings.TrimSpace(label)), ".\"'`")
	switch Intent(label) {
	case IntentAddReminder, IntentWeather, IntentNews:
		return Intent(label)
	default:
		return IntentUnknown
	}
}
