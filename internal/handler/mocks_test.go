package handler

import (
	"context"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/usecase"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, email, password string, asAdmin bool) (*usecase.AuthResult, error) {
	args := m.Called(ctx, email, password, asAdmin)
	res, _ := args.Get(0).(*usecase.AuthResult)
	return res, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*usecase.AuthResult)
	return res, args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) List(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	args := m.Called(ctx, actor)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	args := m.Called(ctx, actor, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor domain.Actor, id string, in usecase.UpdateUserInput) (*domain.User, error) {
	args := m.Called(ctx, actor, id, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockListingService struct{ mock.Mock }

func (m *MockListingService) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	args := m.Called(ctx, filter)
	listings, _ := args.Get(0).([]*domain.Listing)
	return listings, args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingService) Create(ctx context.Context, actor domain.Actor, fields domain.ListingFields) (*domain.Listing, error) {
	args := m.Called(ctx, actor, fields)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, actor domain.Actor, id string, fields domain.ListingFields) (*domain.Listing, error) {
	args := m.Called(ctx, actor, id, fields)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockListingService) Publish(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	args := m.Called(ctx, actor, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingService) Archive(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	args := m.Called(ctx, actor, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingService) RevertToDraft(ctx context.Context, actor domain.Actor, id string) (*domain.Listing, error) {
	args := m.Called(ctx, actor, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

type MockImageService struct{ mock.Mock }

func (m *MockImageService) AddImages(ctx context.Context, actor domain.Actor, listingID string, files []domain.ImageUpload) ([]domain.Image, error) {
	args := m.Called(ctx, actor, listingID, files)
	images, _ := args.Get(0).([]domain.Image)
	return images, args.Error(1)
}

func (m *MockImageService) DeleteImage(ctx context.Context, actor domain.Actor, listingID, imageID string) error {
	return m.Called(ctx, actor, listingID, imageID).Error(0)
}

func (m *MockImageService) Reorder(ctx context.Context, actor domain.Actor, listingID string, ids []string) error {
	return m.Called(ctx, actor, listingID, ids).Error(0)
}

type MockStatsService struct{ mock.Mock }

func (m *MockStatsService) Summary(ctx context.Context, actor domain.Actor) (*domain.Summary, error) {
	args := m.Called(ctx, actor)
	s, _ := args.Get(0).(*domain.Summary)
	return s, args.Error(1)
}

func (m *MockStatsService) Timeline(ctx context.Context, actor domain.Actor) (*domain.Timeline, error) {
	args := m.Called(ctx, actor)
	t, _ := args.Get(0).(*domain.Timeline)
	return t, args.Error(1)
}

type MockAssistantService struct{ mock.Mock }

func (m *MockAssistantService) EstimatePrice(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error) {
	args := m.Called(ctx, req)
	e, _ := args.Get(0).(*domain.Estimate)
	return e, args.Error(1)
}

func (m *MockAssistantService) EnhanceDescription(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}

type MockPinger struct{ mock.Mock }

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
