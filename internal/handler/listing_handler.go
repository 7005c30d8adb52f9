package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/middleware"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

type ListingService interface {
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, actor domain.Actor, fields domain.ListingFields) (*domain.Listing, error)
	Update(ctx context.Context, actor domain.Actor, id string, fields domain.ListingFields) (*domain.Listing, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error)
	Archive(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error)
	RevertToDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error)
}

// ListingHandler serves /api/properties.
type ListingHandler struct {
	listings ListingService
	logger   *logger.Logger
}

func NewListingHandler(listings ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: log.Named("ListingHTTPHandler")}
}

// List accepts the optional query filters status and ownerId.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ListingFilter{
		Status:  domain.ListingStatus(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
		OwnerID: strings.TrimSpace(query.Get("ownerId")),
	}
	listings, err := h.listings.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	listing, err := h.listings.Create(r.Context(), middleware.ActorFromContext(r.Context()), req.fields())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/properties/"+listing.ID)
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

// Update leaves field validation to the usecase, after the listing lookup and CanMutate.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.listings.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.fields()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.listings.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.Publish)
}

func (h *ListingHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.Archive)
}

func (h *ListingHandler) RevertToDraft(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.listings.RevertToDraft)
}

func (h *ListingHandler) transition(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, domain.Actor, string) (*domain.Listing, error)) {
	if _, err := apply(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
