package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// maxImageWriteAttempts bounds the optimistic retry loop on the listing version.
const maxImageWriteAttempts = 5

var errVersionConflict = errors.New("listing modified concurrently")

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, appLogger *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     appLogger.Named("MongoListingRepository"),
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if _, err := r.collection.InsertOne(ctx, toListingDocument(listing)); err != nil {
		r.logger.Error("Failed to insert listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) load(ctx context.Context, id string) (*listingDocument, error) {
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &doc, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	listings := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		listings = append(listings, d.toDomain())
	}
	return listings, nil
}

// Update writes the content and lifecycle fields. Images are managed by the image methods.
// published_at is write-once; the stored value is copied back onto listing.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	var publishedAt interface{} = "$published_at"
	if listing.PublishedAt != nil {
		publishedAt = bson.D{{Key: "$ifNull", Value: bson.A{"$published_at", literal(*listing.PublishedAt)}}}
	}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "title", Value: literal(listing.Title)},
		{Key: "description", Value: literal(listing.Description)},
		{Key: "type", Value: literal(listing.Type)},
		{Key: "price", Value: literal(listing.Price)},
		{Key: "surface", Value: literal(listing.Surface)},
		{Key: "street", Value: literal(listing.Address.Street)},
		{Key: "city", Value: literal(listing.Address.City)},
		{Key: "zip_code", Value: literal(listing.Address.ZipCode)},
		{Key: "status", Value: literal(string(listing.Status))},
		{Key: "published_at", Value: publishedAt},
		{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{"$version", 1}}}},
	}}}}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"published_at": 1})
	var stored listingDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": listing.ID}, update, opts).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrListingNotFound
		}
		return fmt.Errorf("update listing: %w", err)
	}
	listing.PublishedAt = nil
	if stored.PublishedAt != nil {
		published := stored.PublishedAt.UTC()
		listing.PublishedAt = &published
	}
	return nil
}

// GetForUpdate reads the document directly; this repository has no cache layer of its own.
func (r *ListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	return r.GetByID(ctx, id)
}

// literal keeps user values such as "$title" from being read as field paths in a pipeline.
func literal(v interface{}) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// mutateImages re-reads the listing and applies fn until the version-guarded write wins.
func (r *ListingRepository) mutateImages(ctx context.Context, id string, fn func(current []domain.Image) ([]domain.Image, error)) error {
	for attempt := 1; attempt <= maxImageWriteAttempts; attempt++ {
		doc, err := r.load(ctx, id)
		if err != nil {
			return err
		}
		next, err := fn(doc.images())
		if err != nil {
			return err
		}
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "version": doc.Version},
			bson.M{"$set": bson.M{"images": toImageDocuments(next)}, "$inc": bson.M{"version": 1}},
		)
		if err != nil {
			return fmt.Errorf("update images: %w", err)
		}
		if res.MatchedCount == 1 {
			return nil
		}
		r.logger.Debug("Image write lost a version race, retrying", zap.String("listing_id", id), zap.Int("attempt", attempt))
	}
	return errVersionConflict
}

func (r *ListingRepository) AddImages(ctx context.Context, listingID string, images []*domain.Image) error {
	return r.mutateImages(ctx, listingID, func(current []domain.Image) ([]domain.Image, error) {
		order := domain.NextImageOrder(current)
		for i, img := range images {
			img.Order = order + i
			img.ListingID = listingID
			current = append(current, *img)
		}
		return current, nil
	})
}

func (r *ListingRepository) DeleteImage(ctx context.Context, listingID, imageID string) error {
	return r.mutateImages(ctx, listingID, func(current []domain.Image) ([]domain.Image, error) {
		kept := current[:0:0]
		for _, img := range current {
			if img.ID != imageID {
				kept = append(kept, img)
			}
		}
		if len(kept) == len(current) {
			return nil, domain.ErrImageNotFound
		}
		return kept, nil
	})
}

func (r *ListingRepository) ReorderImages(ctx context.Context, listingID string, ids []string) error {
	return r.mutateImages(ctx, listingID, func(current []domain.Image) ([]domain.Image, error) {
		if !domain.SameImageSet(current, ids) {
			return nil, domain.ErrImageSetMismatch
		}
		return domain.ApplyImageOrder(current, ids), nil
	})
}

func sortImages(images []domain.Image) {
	sort.SliceStable(images, func(i, j int) bool { return images[i].Order < images[j].Order })
}
