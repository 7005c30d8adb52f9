package domain

import (
	"context"
	"io"
)

// UserRepository persists identities. Implementations enforce email uniqueness.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// ListingRepository persists listings with their ordered images.
// Every mutating method is a single atomic unit in the underlying store.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	// GetByID returns the listing with images sorted by order and the owner's email.
	GetByID(ctx context.Context, id string) (*Listing, error)
	// GetForUpdate is GetByID read straight from the store, never from a cache.
	// Mutations load through it.
	GetForUpdate(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	// Update writes content fields and status. The publication time is write-once:
	// a stored value is never cleared or replaced.
	Update(ctx context.Context, listing *Listing) error
	// Delete removes the listing and all its images.
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// AddImages appends images after the current maximum order and sets their Order.
	AddImages(ctx context.Context, listingID string, images []*Image) error
	DeleteImage(ctx context.Context, listingID, imageID string) error
	// ReorderImages sets order = index of each id. Fails with ErrImageSetMismatch and
	// changes nothing unless ids is exactly the listing's image id set.
	ReorderImages(ctx context.Context, listingID string, ids []string) error
}

// ImageStorage stores image bytes and returns a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher broadcasts domain events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier tells a listing's owner about lifecycle changes.
type Notifier interface {
	ListingPublished(ctx context.Context, listing *Listing) error
}

// CompletionClient sends a prompt to a natural-language completion API and returns the reply text.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
