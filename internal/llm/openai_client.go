package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// openaiClient implements LLMClient against any OpenAI-compatible chat
// completions endpoint.
type openaiClient struct {
	cfg      LLMConfig
	client   openai.Client
	observer Observer
}

// NewOpenAIClient creates an LLMClient backed by the OpenAI SDK. Retries are
// handled by generateWithRetry, so the SDK's own retry loop is disabled.
func NewOpenAIClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &openaiClient{
		cfg:      cfg,
		client:   openai.NewClient(opts...),
		observer: observer,
	}
}

func (c *openaiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return generateWithRetry(ctx, c.cfg, c.observer, req, func(ctx context.Context, temp float64, maxTok int) (string, string, error) {
		messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
		if req.SystemPrompt != "" {
			messages = append(messages, openai.SystemMessage(req.SystemPrompt))
		}
		messages = append(messages, openai.UserMessage(req.UserPrompt))

		params := openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(c.cfg.Model),
			Messages:    messages,
			Temperature: openai.Float(temp),
		}
		if maxTok > 0 {
			params.MaxTokens = openai.Int(int64(maxTok))
		}
		if req.JSONMode {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) {
				return "", "", fmt.Errorf("openai returned status %d: %s", apiErr.StatusCode, apiErr.Message)
			}
			return "", "", err
		}
		if len(completion.Choices) == 0 {
			return "", "", fmt.Errorf("%w: no choices in completion", ErrInvalidOutput)
		}
		return completion.Choices[0].Message.Content, completion.Model, nil
	})
}

func (c *openaiClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := c.client.Models.List(ctx)
	return err == nil
}
