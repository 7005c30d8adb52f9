//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=root",
			"MONGO_INITDB_ROOT_PASSWORD=password",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	uri := fmt.Sprintf("mongodb://root:password@%s/?authSource=admin", resource.GetHostPort("27017/tcp"))

	var client *mongo.Client
	if err := pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}
	testDB = client.Database("estate_test")
	if err := EnsureIndexes(context.Background(), testDB); err != nil {
		log.Fatalf("Could not create indexes: %s", err)
	}

	code := m.Run()

	_ = client.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func seedUser(t *testing.T, users *UserRepository) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@x.com",
		Role:      domain.RoleAdvertiser,
		Status:    domain.UserStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func seedListing(t *testing.T, listings *ListingRepository, owner *domain.User) *domain.Listing {
	t.Helper()
	l := domain.NewListing(uuid.NewString(), owner.ID, domain.ListingFields{Title: "Loft", Price: 1000}, time.Now().UTC().Truncate(time.Millisecond))
	l.OwnerEmail = owner.Email
	require.NoError(t, listings.Create(context.Background(), l))
	return l
}

func imagesOf(n int) []*domain.Image {
	out := make([]*domain.Image, n)
	for i := range out {
		out[i] = &domain.Image{ID: uuid.NewString(), URL: "http://blob/x", Key: "k"}
	}
	return out
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	u := seedUser(t, users)

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrEmailAlreadyExists)

	l := seedListing(t, listings, u)
	assert.ErrorIs(t, users.Delete(ctx, u.ID), domain.ErrUserHasListings)
	require.NoError(t, listings.Delete(ctx, l.ID))
	require.NoError(t, users.Delete(ctx, u.ID))

	_, err := users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListingUpdateKeepsFirstPublicationTime(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	l := seedListing(t, listings, seedUser(t, users))

	archiver, err := listings.GetForUpdate(ctx, l.ID)
	require.NoError(t, err)
	publisher, err := listings.GetForUpdate(ctx, l.ID)
	require.NoError(t, err)

	first := time.Now().UTC().Truncate(time.Millisecond)
	publisher.Publish(first)
	require.NoError(t, listings.Update(ctx, publisher))

	archiver.Archive()
	require.NoError(t, listings.Update(ctx, archiver))
	require.NotNil(t, archiver.PublishedAt)
	assert.True(t, first.Equal(*archiver.PublishedAt))

	stale := *archiver
	stale.PublishedAt = nil
	stale.Title = "$title"
	stale.Publish(first.Add(time.Hour))
	require.NoError(t, listings.Update(ctx, &stale))

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
	assert.Equal(t, "$title", got.Title)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, first.Equal(*got.PublishedAt))

	draft := seedListing(t, listings, seedUser(t, users))
	draft.Title = "Renamed"
	require.NoError(t, listings.Update(ctx, draft))
	got, err = listings.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PublishedAt)
	assert.Equal(t, "Renamed", got.Title)

	assert.ErrorIs(t, listings.Update(ctx, &domain.Listing{ID: uuid.NewString()}), domain.ErrListingNotFound)
}

func TestListingRepositoryImages(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	l := seedListing(t, listings, seedUser(t, users))

	first := imagesOf(3)
	require.NoError(t, listings.AddImages(ctx, l.ID, first))
	require.NoError(t, listings.DeleteImage(ctx, l.ID, first[1].ID))
	assert.ErrorIs(t, listings.DeleteImage(ctx, l.ID, first[1].ID), domain.ErrImageNotFound)

	second := imagesOf(1)
	require.NoError(t, listings.AddImages(ctx, l.ID, second))
	assert.Equal(t, 3, second[0].Order)

	ids := []string{second[0].ID, first[2].ID, first[0].ID}
	require.NoError(t, listings.ReorderImages(ctx, l.ID, ids))
	assert.ErrorIs(t, listings.ReorderImages(ctx, l.ID, ids[1:]), domain.ErrImageSetMismatch)

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	for i, img := range got.Images {
		assert.Equal(t, ids[i], img.ID)
		assert.Equal(t, i, img.Order)
	}
}

func TestListingRepositoryConcurrentAddImages(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	l := seedListing(t, listings, seedUser(t, users))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, listings.AddImages(ctx, l.ID, imagesOf(1)))
		}()
	}
	wg.Wait()

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, []int{got.Images[0].Order, got.Images[1].Order, got.Images[2].Order})
}

func TestListingRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testDB, logger.NewNop())
	listings := NewListingRepository(testDB, logger.NewNop())
	owner := seedUser(t, users)
	l := seedListing(t, listings, owner)
	l.Publish(time.Now().UTC())
	require.NoError(t, listings.Update(ctx, l))
	seedListing(t, listings, owner)

	published, err := listings.List(ctx, domain.ListingFilter{Status: domain.StatusPublished, OwnerID: owner.ID})
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, l.ID, published[0].ID)
	assert.Equal(t, owner.Email, published[0].OwnerEmail)

	n, err := listings.CountByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
