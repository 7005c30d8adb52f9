package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("estate-service/llm")

var errNoChoices = errors.New("completion returned no choices")

// Config selects the chat completion endpoint.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the public OpenAI endpoint
	Model   string
}

// OpenAIClient implements domain.CompletionClient on the chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

func NewOpenAIClient(cfg Config, log *logger.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: log.Named("OpenAIClient"),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "OpenAIClient.Complete")
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		c.logger.Error("Chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	c.logger.Debug("Chat completion done",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}
