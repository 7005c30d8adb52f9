package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "listing:"

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// CachedListingRepository serves GetByID from Redis and drops the entry on every write.
// Cache failures are logged and fall through to the wrapped repository.
type CachedListingRepository struct {
	domain.ListingRepository
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedListingRepository(next domain.ListingRepository, client *redis.Client, ttl time.Duration, appLogger *logger.Logger) *CachedListingRepository {
	return &CachedListingRepository{
		ListingRepository: next,
		client:            client,
		ttl:               ttl,
		logger:            appLogger.Named("ListingCache"),
	}
}

func (c *CachedListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	switch {
	case err == nil:
		var listing domain.Listing
		if err := json.Unmarshal(data, &listing); err == nil {
			return &listing, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", zap.String("listing_id", id))
		c.invalidate(ctx, id)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache read failed", zap.String("listing_id", id), zap.Error(err))
	}

	listing, err := c.ListingRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(listing); err == nil {
		if err := c.client.Set(ctx, keyPrefix+id, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

// GetForUpdate skips the cache. Mutations must start from the stored state, not a
// possibly stale entry.
func (c *CachedListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	return c.ListingRepository.GetForUpdate(ctx, id)
}

func (c *CachedListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	defer c.invalidate(ctx, listing.ID)
	return c.ListingRepository.Update(ctx, listing)
}

func (c *CachedListingRepository) Delete(ctx context.Context, id string) error {
	defer c.invalidate(ctx, id)
	return c.ListingRepository.Delete(ctx, id)
}

func (c *CachedListingRepository) AddImages(ctx context.Context, listingID string, images []*domain.Image) error {
	defer c.invalidate(ctx, listingID)
	return c.ListingRepository.AddImages(ctx, listingID, images)
}

func (c *CachedListingRepository) DeleteImage(ctx context.Context, listingID, imageID string) error {
	defer c.invalidate(ctx, listingID)
	return c.ListingRepository.DeleteImage(ctx, listingID, imageID)
}

func (c *CachedListingRepository) ReorderImages(ctx context.Context, listingID string, ids []string) error {
	defer c.invalidate(ctx, listingID)
	return c.ListingRepository.ReorderImages(ctx, listingID, ids)
}

func (c *CachedListingRepository) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}
