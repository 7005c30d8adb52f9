package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type ListingStatus string

const (
	StatusDraft     ListingStatus = "DRAFT"
	StatusPublished ListingStatus = "PUBLISHED"
	StatusArchived  ListingStatus = "ARCHIVED"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Address is embedded in a listing and has no identity of its own.
type Address struct {
	Street  string
	City    string
	ZipCode string
}

// ListingFields are the owner-editable content fields of a listing.
type ListingFields struct {
	Title       string
	Description string
	Type        string
	Price       float64
	Surface     float64
	Address     Address
}

const (
	maxTitleLen  = 120
	maxTypeLen   = 50
	maxStreetLen = 255
	maxCityLen   = 100
	maxZipLen    = 10
)

// Validate checks the field constraints shared by create and update.
func (f ListingFields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case utf8.RuneCountInString(f.Title) > maxTitleLen:
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLen)
	case utf8.RuneCountInString(f.Type) > maxTypeLen:
		return fmt.Errorf("%w: type must be at most %d characters", ErrInvalidInput, maxTypeLen)
	case f.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case f.Surface < 0:
		return fmt.Errorf("%w: surface cannot be negative", ErrInvalidInput)
	case utf8.RuneCountInString(f.Address.Street) > maxStreetLen:
		return fmt.Errorf("%w: street must be at most %d characters", ErrInvalidInput, maxStreetLen)
	case utf8.RuneCountInString(f.Address.City) > maxCityLen:
		return fmt.Errorf("%w: city must be at most %d characters", ErrInvalidInput, maxCityLen)
	case utf8.RuneCountInString(f.Address.ZipCode) > maxZipLen:
		return fmt.Errorf("%w: zip code must be at most %d characters", ErrInvalidInput, maxZipLen)
	}
	return nil
}

// Listing is a property advertisement owned by exactly one user.
type Listing struct {
	ID          string
	OwnerID     string
	OwnerEmail  string
	Title       string
	Description string
	Type        string
	Price       float64
	Surface     float64
	Address     Address
	Status      ListingStatus
	CreatedAt   time.Time
	PublishedAt *time.Time
	Images      []Image
}

// NewListing creates a draft listing owned by ownerID.
func NewListing(id, ownerID string, f ListingFields, now time.Time) *Listing {
	l := &Listing{
		ID:        id,
		OwnerID:   ownerID,
		Status:    StatusDraft,
		CreatedAt: now,
		Images:    []Image{},
	}
	l.Apply(f)
	return l
}

// Apply overwrites the content fields. Status, owner and timestamps are untouched.
func (l *Listing) Apply(f ListingFields) {
	l.Title = f.Title
	l.Description = f.Description
	l.Type = f.Type
	l.Price = f.Price
	l.Surface = f.Surface
	l.Address = f.Address
}

// Publish moves the listing to PUBLISHED. PublishedAt records the first publication only.
func (l *Listing) Publish(now time.Time) {
	l.Status = StatusPublished
	if l.PublishedAt == nil {
		t := now
		l.PublishedAt = &t
	}
}

func (l *Listing) Archive() { l.Status = StatusArchived }

func (l *Listing) RevertToDraft() { l.Status = StatusDraft }

// CanMutate reports whether actor may change or delete l.
func CanMutate(actor Actor, l *Listing) bool {
	if !actor.Authenticated() || l == nil {
		return false
	}
	return actor.IsAdmin || actor.UserID == l.OwnerID
}

// ListingFilter narrows the public listing query. Zero values mean "any".
type ListingFilter struct {
	Status  ListingStatus
	OwnerID string
}
