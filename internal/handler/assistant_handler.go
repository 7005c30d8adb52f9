package handler

import (
	"context"
	"net/http"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
)

type AssistantService interface {
	EstimatePrice(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error)
	EnhanceDescription(ctx context.Context, description string) (string, error)
}

// AssistantHandler serves /api/ia.
type AssistantHandler struct {
	assistant AssistantService
	logger    *logger.Logger
}

func NewAssistantHandler(assistant AssistantService, log *logger.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: log.Named("AssistantHTTPHandler")}
}

func (h *AssistantHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	estimate, err := h.assistant.EstimatePrice(r.Context(), domain.EstimateRequest{Description: req.Description, IsForSale: req.IsForSale})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		EstimatedPrice: estimate.EstimatedPrice,
		MinPrice:       estimate.MinPrice,
		MaxPrice:       estimate.MaxPrice,
		Explanation:    estimate.Explanation,
	})
}

func (h *AssistantHandler) EnhanceDescription(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	enhanced, err := h.assistant.EnhanceDescription(r.Context(), req.Description)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enhanceResponse{EnhancedDescription: enhanced})
}
