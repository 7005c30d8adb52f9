package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository stores listings in "properties" and their images in "images".
type ListingRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewListingRepository(db *gorm.DB, appLogger *logger.Logger) *ListingRepository {
	return &ListingRepository{db: db, logger: appLogger.Named("PostgresListingRepository")}
}

func withImagesAndOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	})
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	id, ok := parseID(listing.ID)
	if !ok {
		return fmt.Errorf("%w: malformed listing id %q", domain.ErrInvalidInput, listing.ID)
	}
	ownerID, ok := parseID(listing.OwnerID)
	if !ok {
		return domain.ErrUserNotFound
	}
	m := propertyModel{
		ID:          id,
		UserID:      ownerID,
		Title:       listing.Title,
		Description: listing.Description,
		Type:        listing.Type,
		Price:       listing.Price,
		Surface:     listing.Surface,
		Street:      listing.Address.Street,
		City:        listing.Address.City,
		ZipCode:     listing.Address.ZipCode,
		Status:      string(listing.Status),
		CreatedAt:   listing.CreatedAt,
		PublishedAt: listing.PublishedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrUserNotFound
		}
		r.logger.Error("Failed to insert listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	var m propertyModel
	if err := withImagesAndOwner(r.db.WithContext(ctx)).First(&m, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	q := withImagesAndOwner(r.db.WithContext(ctx)).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.OwnerID != "" {
		ownerID, ok := parseID(filter.OwnerID)
		if !ok {
			return []*domain.Listing{}, nil
		}
		q = q.Where("user_id = ?", ownerID)
	}
	var models []propertyModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	listings := make([]*domain.Listing, 0, len(models))
	for _, m := range models {
		listings = append(listings, m.toDomain())
	}
	return listings, nil
}

// Update writes the listing and copies the stored publication time back onto it.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	uid, ok := parseID(listing.ID)
	if !ok {
		return domain.ErrListingNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&propertyModel{}).Where("id = ?", uid).Updates(listingColumns(listing))
		if res.Error != nil {
			return fmt.Errorf("update listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrListingNotFound
		}
		var stored propertyModel
		if err := tx.Omit(clause.Associations).Select("published_at").First(&stored, "id = ?", uid).Error; err != nil {
			return fmt.Errorf("reload publication time: %w", err)
		}
		listing.PublishedAt = nil
		if stored.PublishedAt != nil {
			published := stored.PublishedAt.UTC()
			listing.PublishedAt = &published
		}
		return nil
	})
}

// GetForUpdate reads the row directly; this repository has no cache layer of its own.
func (r *ListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

// Delete removes the listing and its image records in one transaction.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	uid, ok := parseID(id)
	if !ok {
		return domain.ErrListingNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", uid).Delete(&imageModel{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		res := tx.Delete(&propertyModel{}, "id = ?", uid)
		if res.Error != nil {
			return fmt.Errorf("delete listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrListingNotFound
		}
		return nil
	})
}

func (r *ListingRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	uid, ok := parseID(ownerID)
	if !ok {
		return 0, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&propertyModel{}).Where("user_id = ?", uid).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// lockListing takes a row lock on the listing so concurrent image writers serialize.
func lockListing(tx *gorm.DB, id uuid.UUID) ([]domain.Image, error) {
	var p propertyModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Omit(clause.Associations).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("lock listing: %w", err)
	}
	var models []imageModel
	if err := tx.Where("property_id = ?", id).Order("sort_order ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select images: %w", err)
	}
	images := make([]domain.Image, 0, len(models))
	for _, m := range models {
		images = append(images, m.toDomain())
	}
	return images, nil
}

// AddImages assigns consecutive orders after the current maximum and inserts the records.
func (r *ListingRepository) AddImages(ctx context.Context, listingID string, images []*domain.Image) error {
	uid, ok := parseID(listingID)
	if !ok {
		return domain.ErrListingNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockListing(tx, uid)
		if err != nil {
			return err
		}
		next := domain.NextImageOrder(current)
		models := make([]imageModel, 0, len(images))
		for i, img := range images {
			imgID, ok := parseID(img.ID)
			if !ok {
				return fmt.Errorf("%w: malformed image id %q", domain.ErrInvalidInput, img.ID)
			}
			img.Order = next + i
			img.ListingID = listingID
			models = append(models, imageModel{
				ID:         imgID,
				PropertyID: uid,
				URL:        img.URL,
				ObjectKey:  img.Key,
				SortOrder:  img.Order,
				CreatedAt:  img.CreatedAt,
			})
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("insert images: %w", err)
		}
		return nil
	})
}

func (r *ListingRepository) DeleteImage(ctx context.Context, listingID, imageID string) error {
	lid, ok := parseID(listingID)
	if !ok {
		return domain.ErrImageNotFound
	}
	iid, ok := parseID(imageID)
	if !ok {
		return domain.ErrImageNotFound
	}
	res := r.db.WithContext(ctx).Delete(&imageModel{}, "id = ? AND property_id = ?", iid, lid)
	if res.Error != nil {
		return fmt.Errorf("delete image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

// ReorderImages rechecks the id set under the row lock, then writes order = position.
func (r *ListingRepository) ReorderImages(ctx context.Context, listingID string, ids []string) error {
	uid, ok := parseID(listingID)
	if !ok {
		return domain.ErrListingNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockListing(tx, uid)
		if err != nil {
			return err
		}
		if !domain.SameImageSet(current, ids) {
			return domain.ErrImageSetMismatch
		}
		for position, id := range ids {
			iid, _ := parseID(id)
			if err := tx.Model(&imageModel{}).
				Where("id = ? AND property_id = ?", iid, uid).
				Update("sort_order", position).Error; err != nil {
				return fmt.Errorf("update image order: %w", err)
			}
		}
		return nil
	})
}
