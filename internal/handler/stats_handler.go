package handler

import (
	"context"
	"net/http"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/middleware"
	"github.com/Yzairi/CDA/internal/platform/logger"
)

type StatsService interface {
	Summary(ctx context.Context, actor domain.Actor) (*domain.Summary, error)
	Timeline(ctx context.Context, actor domain.Actor) (*domain.Timeline, error)
}

// StatsHandler serves the administrator reports.
type StatsHandler struct {
	stats  StatsService
	logger *logger.Logger
}

func NewStatsHandler(stats StatsService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: log.Named("StatsHTTPHandler")}
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *StatsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.stats.Timeline(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineResponse{
		Users:             toTimelinePoints(timeline.Users),
		Listings:          toTimelinePoints(timeline.Listings),
		PublishedListings: toTimelinePoints(timeline.PublishedListings),
	})
}
