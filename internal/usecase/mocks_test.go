package usecase

import (
	"context"
	"io"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) GetForUpdate(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListingRepository) AddImages(ctx context.Context, listingID string, images []*domain.Image) error {
	args := m.Called(ctx, listingID, images)
	return args.Error(0)
}
func (m *MockListingRepository) DeleteImage(ctx context.Context, listingID, imageID string) error {
	args := m.Called(ctx, listingID, imageID)
	return args.Error(0)
}
func (m *MockListingRepository) ReorderImages(ctx context.Context, listingID string, ids []string) error {
	args := m.Called(ctx, listingID, ids)
	return args.Error(0)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockImageStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) ListingPublished(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

type MockCompletionClient struct{ mock.Mock }

func (m *MockCompletionClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockTokenIssuer struct{ mock.Mock }

func (m *MockTokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) ListingTransition(transition string) { m.Called(transition) }
func (m *MockRecorder) ImagesAdded(n int)                   { m.Called(n) }
func (m *MockRecorder) EstimateFallback()                   { m.Called() }
