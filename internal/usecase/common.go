package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("estate-service/usecase")

// Recorder receives business metrics. The Prometheus manager implements it.
type Recorder interface {
	ListingTransition(transition string)
	ImagesAdded(n int)
	EstimateFallback()
}

type nopRecorder struct{}

func (nopRecorder) ListingTransition(string) {}
func (nopRecorder) ImagesAdded(int)          {}
func (nopRecorder) EstimateFallback()        {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// ListingEvent is the payload of every listing.* subject.
type ListingEvent struct {
	ListingID   string     `json:"listing_id"`
	OwnerID     string     `json:"owner_id"`
	ActorID     string     `json:"actor_id"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ImageIDs    []string   `json:"image_ids,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func newListingEvent(l *domain.Listing, actor domain.Actor, now time.Time) ListingEvent {
	return ListingEvent{
		ListingID:   l.ID,
		OwnerID:     l.OwnerID,
		ActorID:     actor.UserID,
		Status:      string(l.Status),
		PublishedAt: l.PublishedAt,
		OccurredAt:  now,
	}
}

// publishEvent never fails the caller; the mutation has already been committed.
func publishEvent(ctx context.Context, pub domain.EventPublisher, log *logger.Logger, subject string, data interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, data); err != nil {
		log.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// loadMutable resolves the listing a mutation targets. Checks run in a fixed order:
// unauthenticated, then not found, then CanMutate.
func loadMutable(ctx context.Context, repo domain.ListingRepository, log *logger.Logger, actor domain.Actor, listingID string) (*domain.Listing, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	listing, err := repo.GetForUpdate(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrListingNotFound
		}
		log.Error("Failed to load listing", zap.String("listing_id", listingID), zap.Error(err))
		return nil, upstream("load listing", err)
	}
	if !domain.CanMutate(actor, listing) {
		log.Warn("Forbidden listing mutation",
			zap.String("listing_id", listingID),
			zap.String("owner_id", listing.OwnerID),
			zap.String("actor_id", actor.UserID))
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

// upstream tags infrastructure errors unless they already carry a domain kind.
func upstream(op string, err error) error {
	for _, kind := range []error{
		domain.ErrUpstream, domain.ErrNotFound, domain.ErrConflict,
		domain.ErrInvalidInput, domain.ErrForbidden, domain.ErrUnauthenticated,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, op, err)
}
