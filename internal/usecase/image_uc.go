package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// ImageUsecase manages the ordered image collection of a listing.
type ImageUsecase struct {
	repo     domain.ListingRepository
	storage  domain.ImageStorage
	events   domain.EventPublisher
	recorder Recorder
	clock    clock.Clock
	ids      clock.IDGenerator
	logger   *logger.Logger
}

// NewImageUsecase accepts a nil storage; uploads then fail with domain.ErrStorageUnavailable.
func NewImageUsecase(repo domain.ListingRepository, storage domain.ImageStorage, events domain.EventPublisher,
	recorder Recorder, clk clock.Clock, ids clock.IDGenerator, log *logger.Logger) *ImageUsecase {
	return &ImageUsecase{
		repo:     repo,
		storage:  storage,
		events:   events,
		recorder: recorderOrNop(recorder),
		clock:    clk,
		ids:      ids,
		logger:   log.Named("ImageUsecase"),
	}
}

// AddImages uploads every non-empty file and appends them after the current last image.
func (uc *ImageUsecase) AddImages(ctx context.Context, actor domain.Actor, listingID string, files []domain.ImageUpload) ([]domain.Image, error) {
	ctx, span := tracer.Start(ctx, "ImageUsecase.AddImages")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, listingID)
	if err != nil {
		return nil, err
	}
	if uc.storage == nil {
		return nil, domain.ErrStorageUnavailable
	}

	now := uc.clock.Now()
	added := make([]*domain.Image, 0, len(files))
	for _, f := range files {
		if f.Size == 0 || f.Body == nil {
			uc.logger.Info("Skipping empty upload", zap.String("listing_id", listingID), zap.String("filename", f.Filename))
			continue
		}
		id := uc.ids.NewID()
		key := objectKey(listing.ID, id, f.Filename)
		url, err := uc.storage.Upload(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			uc.logger.Error("Image upload failed", zap.String("listing_id", listingID), zap.String("key", key), zap.Error(err))
			uc.discard(ctx, added)
			return nil, upstream("upload image", err)
		}
		added = append(added, &domain.Image{ID: id, ListingID: listing.ID, URL: url, Key: key, CreatedAt: now})
	}
	if len(added) == 0 {
		return nil, domain.ErrNoImageFiles
	}

	if err := uc.repo.AddImages(ctx, listing.ID, added); err != nil {
		uc.logger.Error("Failed to save images", zap.String("listing_id", listingID), zap.Error(err))
		uc.discard(ctx, added)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, upstream("save images", err)
	}

	out := make([]domain.Image, len(added))
	ids := make([]string, len(added))
	for i, img := range added {
		out[i] = *img
		ids[i] = img.ID
	}

	uc.recorder.ImagesAdded(len(out))
	event := newListingEvent(listing, actor, now)
	event.ImageIDs = ids
	publishEvent(ctx, uc.events, uc.logger, "listing.images.added", event)
	uc.logger.Info("Images added", zap.String("listing_id", listingID), zap.Int("count", len(out)))
	return out, nil
}

// DeleteImage removes one image. The remaining orders are left as they are.
func (uc *ImageUsecase) DeleteImage(ctx context.Context, actor domain.Actor, listingID, imageID string) error {
	ctx, span := tracer.Start(ctx, "ImageUsecase.DeleteImage")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, listingID)
	if err != nil {
		return err
	}
	var target *domain.Image
	for i := range listing.Images {
		if listing.Images[i].ID == imageID {
			target = &listing.Images[i]
			break
		}
	}
	if target == nil {
		return domain.ErrImageNotFound
	}

	if err := uc.repo.DeleteImage(ctx, listingID, imageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrImageNotFound
		}
		uc.logger.Error("Failed to delete image", zap.String("image_id", imageID), zap.Error(err))
		return upstream("delete image", err)
	}
	if uc.storage != nil && target.Key != "" {
		if err := uc.storage.Delete(ctx, target.Key); err != nil {
			uc.logger.Warn("Failed to delete image object", zap.String("key", target.Key), zap.Error(err))
		}
	}

	event := newListingEvent(listing, actor, uc.clock.Now())
	event.ImageIDs = []string{imageID}
	publishEvent(ctx, uc.events, uc.logger, "listing.image.deleted", event)
	uc.logger.Info("Image deleted", zap.String("listing_id", listingID), zap.String("image_id", imageID))
	return nil
}

// Reorder assigns order = position in ids. ids must be a permutation of the current image ids.
func (uc *ImageUsecase) Reorder(ctx context.Context, actor domain.Actor, listingID string, ids []string) error {
	ctx, span := tracer.Start(ctx, "ImageUsecase.Reorder")
	defer span.End()

	listing, err := loadMutable(ctx, uc.repo, uc.logger, actor, listingID)
	if err != nil {
		return err
	}
	if !domain.SameImageSet(listing.Images, ids) {
		uc.logger.Info("Reorder rejected",
			zap.String("listing_id", listingID),
			zap.Int("current", len(listing.Images)),
			zap.Int("submitted", len(ids)))
		return domain.ErrImageSetMismatch
	}

	if err := uc.repo.ReorderImages(ctx, listingID, ids); err != nil {
		if errors.Is(err, domain.ErrImageSetMismatch) {
			return err
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrListingNotFound
		}
		uc.logger.Error("Failed to reorder images", zap.String("listing_id", listingID), zap.Error(err))
		return upstream("reorder images", err)
	}

	event := newListingEvent(listing, actor, uc.clock.Now())
	event.ImageIDs = ids
	publishEvent(ctx, uc.events, uc.logger, "listing.images.reordered", event)
	uc.logger.Info("Images reordered", zap.String("listing_id", listingID), zap.Int("count", len(ids)))
	return nil
}

func (uc *ImageUsecase) discard(ctx context.Context, images []*domain.Image) {
	for _, img := range images {
		if err := uc.storage.Delete(ctx, img.Key); err != nil {
			uc.logger.Warn("Failed to remove orphaned image object", zap.String("key", img.Key), zap.Error(err))
		}
	}
}

func objectKey(listingID, imageID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("listings/%s/%s%s", listingID, imageID, ext)
}
