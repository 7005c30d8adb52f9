package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func upload(name, body string) domain.ImageUpload {
	return domain.ImageUpload{Filename: name, ContentType: "image/jpeg", Size: int64(len(body)), Body: bytes.NewReader([]byte(body))}
}

func newImageUsecase(repo *MockListingRepository, storage domain.ImageStorage, events domain.EventPublisher) *ImageUsecase {
	return NewImageUsecase(repo, storage, events, nil, clock.Fixed(), clock.NewSequentialIDs("img"), logger.NewNop())
}

func listingWithImages(ids ...string) *domain.Listing {
	l := draftListing(clock.Fixed())
	for i, id := range ids {
		l.Images = append(l.Images, domain.Image{ID: id, ListingID: l.ID, Key: "listings/listing-1/" + id + ".jpg", Order: i})
	}
	return l
}

func TestImageUsecase_AddImages(t *testing.T) {
	ctx := context.Background()

	t.Run("appends after the current last image", func(t *testing.T) {
		repo := new(MockListingRepository)
		storage := new(MockImageStorage)
		events := new(MockEventPublisher)
		uc := newImageUsecase(repo, storage, events)
		listing := listingWithImages("a", "b")

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		storage.On("Upload", mock.Anything, "listings/listing-1/img-1.jpg", mock.Anything, int64(3), "image/jpeg").Return("http://blob/img-1.jpg", nil).Once()
		storage.On("Upload", mock.Anything, "listings/listing-1/img-2.png", mock.Anything, int64(4), "image/jpeg").Return("http://blob/img-2.png", nil).Once()
		repo.On("AddImages", mock.Anything, listing.ID, mock.MatchedBy(func(imgs []*domain.Image) bool { return len(imgs) == 2 })).
			Run(func(args mock.Arguments) {
				next := domain.NextImageOrder(listing.Images)
				for i, img := range args.Get(2).([]*domain.Image) {
					img.Order = next + i
				}
			}).Return(nil).Once()
		events.On("Publish", mock.Anything, "listing.images.added", mock.Anything).Return(nil).Once()

		added, err := uc.AddImages(ctx, owner, listing.ID, []domain.ImageUpload{upload("x.JPG", "abc"), upload("y.png", "abcd")})

		require.NoError(t, err)
		require.Len(t, added, 2)
		assert.Equal(t, 2, added[0].Order)
		assert.Equal(t, 3, added[1].Order)
		assert.Equal(t, "http://blob/img-1.jpg", added[0].URL)
		assert.Equal(t, listing.ID, added[1].ListingID)
		repo.AssertExpectations(t)
		storage.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("empty files are skipped", func(t *testing.T) {
		repo := new(MockListingRepository)
		storage := new(MockImageStorage)
		uc := newImageUsecase(repo, storage, nil)
		listing := listingWithImages()

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, int64(2), mock.Anything).Return("http://blob/1", nil).Once()
		repo.On("AddImages", mock.Anything, listing.ID, mock.MatchedBy(func(imgs []*domain.Image) bool { return len(imgs) == 1 })).Return(nil).Once()

		added, err := uc.AddImages(ctx, owner, listing.ID, []domain.ImageUpload{upload("empty.jpg", ""), upload("ok.jpg", "ok")})

		require.NoError(t, err)
		assert.Len(t, added, 1)
		storage.AssertNumberOfCalls(t, "Upload", 1)
	})

	t.Run("only empty files", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, new(MockImageStorage), nil)
		listing := listingWithImages()
		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

		_, err := uc.AddImages(ctx, owner, listing.ID, []domain.ImageUpload{upload("empty.jpg", "")})

		assert.ErrorIs(t, err, domain.ErrNoImageFiles)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "AddImages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage not configured", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, nil, nil)
		listing := listingWithImages()
		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

		_, err := uc.AddImages(ctx, owner, listing.ID, []domain.ImageUpload{upload("a.jpg", "abc")})

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})

	t.Run("upload failure removes earlier uploads", func(t *testing.T) {
		repo := new(MockListingRepository)
		storage := new(MockImageStorage)
		uc := newImageUsecase(repo, storage, nil)
		listing := listingWithImages()

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		storage.On("Upload", mock.Anything, "listings/listing-1/img-1.jpg", mock.Anything, mock.Anything, mock.Anything).Return("http://blob/1", nil).Once()
		storage.On("Upload", mock.Anything, "listings/listing-1/img-2.jpg", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone")).Once()
		storage.On("Delete", mock.Anything, "listings/listing-1/img-1.jpg").Return(nil).Once()

		_, err := uc.AddImages(ctx, owner, listing.ID, []domain.ImageUpload{upload("a.jpg", "a"), upload("b.jpg", "b")})

		assert.ErrorIs(t, err, domain.ErrUpstream)
		storage.AssertExpectations(t)
		repo.AssertNotCalled(t, "AddImages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stranger is forbidden before any upload", func(t *testing.T) {
		repo := new(MockListingRepository)
		storage := new(MockImageStorage)
		uc := newImageUsecase(repo, storage, nil)
		listing := listingWithImages()
		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

		_, err := uc.AddImages(ctx, stranger, listing.ID, []domain.ImageUpload{upload("a.jpg", "a")})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestImageUsecase_Reorder(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the submitted permutation", func(t *testing.T) {
		repo := new(MockListingRepository)
		events := new(MockEventPublisher)
		uc := newImageUsecase(repo, nil, events)
		listing := listingWithImages("A", "B", "C")
		ids := []string{"C", "A", "B"}

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		repo.On("ReorderImages", mock.Anything, listing.ID, ids).Run(func(args mock.Arguments) {
			listing.Images = domain.ApplyImageOrder(listing.Images, args.Get(2).([]string))
		}).Return(nil).Once()
		events.On("Publish", mock.Anything, "listing.images.reordered", mock.Anything).Return(nil).Once()

		require.NoError(t, uc.Reorder(ctx, owner, listing.ID, ids))

		orders := map[string]int{}
		for _, img := range listing.Images {
			orders[img.ID] = img.Order
		}
		assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 0}, orders)
		repo.AssertExpectations(t)
	})

	t.Run("empty set on a listing without images", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, nil, nil)
		listing := listingWithImages()

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		repo.On("ReorderImages", mock.Anything, listing.ID, []string{}).Return(nil).Once()

		require.NoError(t, uc.Reorder(ctx, owner, listing.ID, []string{}))
		repo.AssertExpectations(t)
	})

	for name, ids := range map[string][]string{
		"missing id":   {"A", "B"},
		"unknown id":   {"A", "B", "Z"},
		"duplicate id": {"A", "A", "B"},
		"empty":        {},
	} {
		t.Run(name, func(t *testing.T) {
			repo := new(MockListingRepository)
			uc := newImageUsecase(repo, nil, nil)
			listing := listingWithImages("A", "B", "C")
			repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

			err := uc.Reorder(ctx, owner, listing.ID, ids)

			assert.ErrorIs(t, err, domain.ErrImageSetMismatch)
			repo.AssertNotCalled(t, "ReorderImages", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, []int{0, 1, 2}, []int{listing.Images[0].Order, listing.Images[1].Order, listing.Images[2].Order})
		})
	}

	t.Run("forbidden for non owner", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, nil, nil)
		listing := listingWithImages("A")
		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

		err := uc.Reorder(ctx, stranger, listing.ID, []string{"A"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestImageUsecase_DeleteImage(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record and object", func(t *testing.T) {
		repo := new(MockListingRepository)
		storage := new(MockImageStorage)
		events := new(MockEventPublisher)
		uc := newImageUsecase(repo, storage, events)
		listing := listingWithImages("A", "B")

		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()
		repo.On("DeleteImage", mock.Anything, listing.ID, "B").Return(nil).Once()
		storage.On("Delete", mock.Anything, "listings/listing-1/B.jpg").Return(errors.New("already gone")).Once()
		events.On("Publish", mock.Anything, "listing.image.deleted", mock.Anything).Return(nil).Once()

		require.NoError(t, uc.DeleteImage(ctx, admin, listing.ID, "B"))
		repo.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("unknown image", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, nil, nil)
		listing := listingWithImages("A")
		repo.On("GetForUpdate", mock.Anything, listing.ID).Return(listing, nil).Once()

		err := uc.DeleteImage(ctx, owner, listing.ID, "Z")

		assert.ErrorIs(t, err, domain.ErrImageNotFound)
		repo.AssertNotCalled(t, "DeleteImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown listing", func(t *testing.T) {
		repo := new(MockListingRepository)
		uc := newImageUsecase(repo, nil, nil)
		repo.On("GetForUpdate", mock.Anything, "missing").Return(nil, domain.ErrListingNotFound).Once()

		err := uc.DeleteImage(ctx, owner, "missing", "A")
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "listings/l1/i1.jpg", objectKey("l1", "i1", "Photo.JPG"))
	assert.Equal(t, "listings/l1/i1", objectKey("l1", "i1", "noext"))
}
