package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// ListingUsecase drives the listing lifecycle: create, update, delete and the
// publish/archive/draft transitions. Every mutation goes through loadMutable.
type ListingUsecase struct {
	repo     domain.ListingRepository
	blobs    domain.ImageStorage
	events   domain.EventPublisher
	notifier domain.Notifier
	recorder Recorder
	clock    clock.Clock
	ids      clock.IDGenerator
	logger   *logger.Logger
}

// ListingDeps groups the optional collaborators of ListingUsecase. Nil members are skipped.
type ListingDeps struct {
	Blobs    domain.ImageStorage
	Events   domain.EventPublisher
	Notifier domain.Notifier
	Recorder Recorder
}

func NewListingUsecase(repo domain.ListingRepository, deps ListingDeps, clk clock.Clock, ids clock.IDGenerator, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		repo:     repo,
		blobs:    deps.Blobs,
		events:   deps.Events,
		notifier: deps.Notifier,
		recorder: recorderOrNop(deps.Recorder),
		clock:    clk,
		ids:      ids,
		logger:   log.Named("ListingUsecase"),
	}
}

func (uc *ListingUsecase) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.List")
	defer span.End()

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	listings, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.Error(err))
		return nil, upstream("list listings", err)
	}
	return listings, nil
}

func (uc *ListingUsecase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Get")
	defer span.End()

	listing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrListingNotFound
		}
		uc.logger.Error("Failed to get listing", zap.String("listing_id", id), zap.Error(err))
		return nil, upstream("get listing", err)
	}
	return listing, nil
}

// Create stores a new draft owned by the acting identity.
func (uc *ListingUsecase) Create(ctx context.Context, actor domain.Actor, fields domain.ListingFields) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Create")
	defer span.End()

	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	listing := domain.NewListing(uc.ids.NewID(), actor.UserID, fields, uc.clock.Now())
	listing.OwnerEmail = actor.Email
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.String("owner_id", actor.UserID), zap.Error(err))
		return nil, upstream("create listing", err)
	}

	uc.recorder.ListingTransition("create")
	publishEvent(ctx, uc.events, uc.logger, "listing.created", newListingEvent(listing, actor, listing.CreatedAt))
	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", listing.OwnerID))
	return listing, nil
}

// Update overwrites the content fields. The lifecycle state is not affected.
func (uc *ListingUsecase) Update(ctx context.Context, actor domain.Actor, id string, fields domain.ListingFields) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Update")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, id)
	if err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	listing.Apply(fields)
	if err := uc.save(ctx, listing); err != nil {
		return nil, err
	}

	uc.recorder.ListingTransition("update")
	publishEvent(ctx, uc.events, uc.logger, "listing.updated", newListingEvent(listing, actor, uc.clock.Now()))
	uc.logger.Info("Listing updated", zap.String("listing_id", id), zap.String("actor_id", actor.UserID))
	return listing, nil
}

// Delete removes the listing with its images. Blob cleanup is best effort.
func (uc *ListingUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Delete")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrListingNotFound
		}
		uc.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return upstream("delete listing", err)
	}

	if uc.blobs != nil {
		for _, img := range listing.Images {
			if img.Key == "" {
				continue
			}
			if err := uc.blobs.Delete(ctx, img.Key); err != nil {
				uc.logger.Warn("Failed to delete image object", zap.String("key", img.Key), zap.Error(err))
			}
		}
	}

	uc.recorder.ListingTransition("delete")
	publishEvent(ctx, uc.events, uc.logger, "listing.deleted", newListingEvent(listing, actor, uc.clock.Now()))
	uc.logger.Info("Listing deleted", zap.String("listing_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// Publish moves the listing to PUBLISHED. The publication time is only recorded the first time.
func (uc *ListingUsecase) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Publish")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, id)
	if err != nil {
		return nil, err
	}
	firstPublish := listing.PublishedAt == nil
	listing.Publish(uc.clock.Now())
	if err := uc.save(ctx, listing); err != nil {
		return nil, err
	}

	uc.recorder.ListingTransition("publish")
	publishEvent(ctx, uc.events, uc.logger, "listing.published", newListingEvent(listing, actor, uc.clock.Now()))
	if firstPublish && uc.notifier != nil {
		if err := uc.notifier.ListingPublished(ctx, listing); err != nil {
			uc.logger.Warn("Failed to notify owner", zap.String("listing_id", id), zap.Error(err))
		}
	}
	uc.logger.Info("Listing published",
		zap.String("listing_id", id),
		zap.Bool("first_publish", firstPublish),
		zap.Timep("published_at", listing.PublishedAt))
	return listing, nil
}

func (uc *ListingUsecase) Archive(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Archive")
	defer span.End()

	return uc.transition(ctx, actor, id, "archive", "listing.archived", (*domain.Listing).Archive)
}

func (uc *ListingUsecase) RevertToDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.RevertToDraft")
	defer span.End()

	return uc.transition(ctx, actor, id, "draft", "listing.drafted", (*domain.Listing).RevertToDraft)
}

func (uc *ListingUsecase) transition(ctx context.Context, actor domain.Actor, id, name, subject string, apply func(*domain.Listing)) (*domain.Listing, error) {
	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, id)
	if err != nil {
		return nil, err
	}
	from := listing.Status
	apply(listing)
	if err := uc.save(ctx, listing); err != nil {
		return nil, err
	}

	uc.recorder.ListingTransition(name)
	publishEvent(ctx, uc.events, uc.logger, subject, newListingEvent(listing, actor, uc.clock.Now()))
	uc.logger.Info("Listing status changed",
		zap.String("listing_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(listing.Status)),
		zap.String("actor_id", actor.UserID))
	return listing, nil
}

func (uc *ListingUsecase) save(ctx context.Context, listing *domain.Listing) error {
	if err := uc.repo.Update(ctx, listing); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrListingNotFound
		}
		uc.logger.Error("Failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return upstream("update listing", err)
	}
	return nil
}
