package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AssistantConfig tunes the completion requests.
type AssistantConfig struct {
	EstimateMaxTokens   int
	EstimateTemperature float32
	EnhanceMaxTokens    int
	EnhanceTemperature  float32
}

func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		EstimateMaxTokens:   500,
		EstimateTemperature: 0.1,
		EnhanceMaxTokens:    300,
		EnhanceTemperature:  0.3,
	}
}

// AssistantUsecase forwards listing prompts to a completion API.
type AssistantUsecase struct {
	client   domain.CompletionClient
	cfg      AssistantConfig
	validate *validator.Validate
	recorder Recorder
	logger   *logger.Logger
}

// NewAssistantUsecase accepts a nil client; every call then fails with domain.ErrAssistantDisabled.
func NewAssistantUsecase(client domain.CompletionClient, cfg AssistantConfig, recorder Recorder, log *logger.Logger) *AssistantUsecase {
	return &AssistantUsecase{
		client:   client,
		cfg:      cfg,
		validate: validator.New(),
		recorder: recorderOrNop(recorder),
		logger:   log.Named("AssistantUsecase"),
	}
}

const estimateSystemPrompt = "You are a real-estate pricing assistant. Answer with a single JSON object and nothing else."

const estimatePromptTemplate = `Estimate the %s of the property below.
Property: %s

Reply with JSON only:
{"estimatedPrice": number, "minPrice": number, "maxPrice": number, "explanation": "short reasoning"}
minPrice must be below estimatedPrice and maxPrice above it.`

const enhanceSystemPrompt = "You rewrite real-estate listing descriptions. Keep every fact, improve clarity and appeal. Reply with the description text only."

// estimateReply is the schema the completion reply must satisfy.
type estimateReply struct {
	EstimatedPrice float64 `json:"estimatedPrice" validate:"gt=0"`
	MinPrice       float64 `json:"minPrice" validate:"gt=0,ltefield=EstimatedPrice"`
	MaxPrice       float64 `json:"maxPrice" validate:"gt=0,gtefield=EstimatedPrice"`
	Explanation    string  `json:"explanation" validate:"required"`
}

// EstimatePrice asks for a price range. Replies that do not decode fall back to a fixed estimate.
func (uc *AssistantUsecase) EstimatePrice(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	ctx, span := tracer.Start(ctx, "AssistantUsecase.EstimatePrice")
	defer span.End()

	if uc.client == nil {
		return nil, domain.ErrAssistantDisabled
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}

	kind := "monthly rent"
	if req.IsForSale {
		kind = "sale price"
	}
	reply, err := uc.client.Complete(ctx, domain.CompletionRequest{
		System:      estimateSystemPrompt,
		Prompt:      fmt.Sprintf(estimatePromptTemplate, kind, req.Description),
		MaxTokens:   uc.cfg.EstimateMaxTokens,
		Temperature: uc.cfg.EstimateTemperature,
	})
	if err != nil {
		uc.logger.Error("Completion request failed", zap.Error(err))
		return nil, upstream("estimate price", err)
	}

	estimate, err := uc.decodeEstimate(reply)
	if err != nil {
		uc.logger.Warn("Estimate reply rejected, using fallback", zap.Error(err), zap.Bool("for_sale", req.IsForSale))
		uc.recorder.EstimateFallback()
		fallback := domain.FallbackEstimate(req.IsForSale)
		return &fallback, nil
	}
	return estimate, nil
}

// EnhanceDescription rewrites a listing description.
func (uc *AssistantUsecase) EnhanceDescription(ctx context.Context, description string) (string, error) {
	ctx, span := tracer.Start(ctx, "AssistantUsecase.EnhanceDescription")
	defer span.End()

	if uc.client == nil {
		return "", domain.ErrAssistantDisabled
	}
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	reply, err := uc.client.Complete(ctx, domain.CompletionRequest{
		System:      enhanceSystemPrompt,
		Prompt:      description,
		MaxTokens:   uc.cfg.EnhanceMaxTokens,
		Temperature: uc.cfg.EnhanceTemperature,
	})
	if err != nil {
		uc.logger.Error("Completion request failed", zap.Error(err))
		return "", upstream("enhance description", err)
	}
	enhanced := strings.TrimSpace(reply)
	if enhanced == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrUpstream)
	}
	return enhanced, nil
}

var errNoJSONObject = errors.New("no JSON object in reply")

// decodeEstimate extracts the first JSON object of reply and validates it against estimateReply.
func (uc *AssistantUsecase) decodeEstimate(reply string) (*domain.Estimate, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, errNoJSONObject
	}
	var parsed estimateReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("decode estimate: %w", err)
	}
	if err := uc.validate.Struct(parsed); err != nil {
		return nil, fmt.Errorf("validate estimate: %w", err)
	}
	return &domain.Estimate{
		EstimatedPrice: parsed.EstimatedPrice,
		MinPrice:       parsed.MinPrice,
		MaxPrice:       parsed.MaxPrice,
		Explanation:    parsed.Explanation,
	}, nil
}
