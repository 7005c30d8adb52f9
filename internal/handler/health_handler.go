package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// Pinger is satisfied by the repository store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *logger.Logger
}

func NewHealthHandler(store Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: log.Named("HealthHandler")}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
