package mongodb

import (
	"time"

	"github.com/Yzairi/CDA/internal/domain"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
}

// listingDocument embeds its images; Version guards concurrent image writes.
type listingDocument struct {
	ID          string          `bson:"_id"`
	OwnerID     string          `bson:"owner_id"`
	OwnerEmail  string          `bson:"owner_email"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Type        string          `bson:"type"`
	Price       float64         `bson:"price"`
	Surface     float64         `bson:"surface"`
	Street      string          `bson:"street"`
	City        string          `bson:"city"`
	ZipCode     string          `bson:"zip_code"`
	Status      string          `bson:"status"`
	CreatedAt   time.Time       `bson:"created_at"`
	PublishedAt *time.Time      `bson:"published_at,omitempty"`
	Images      []imageDocument `bson:"images"`
	Version     int64           `bson:"version"`
}

type imageDocument struct {
	ID        string    `bson:"id"`
	URL       string    `bson:"url"`
	Key       string    `bson:"key"`
	Order     int       `bson:"order"`
	CreatedAt time.Time `bson:"created_at"`
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Status:       domain.UserStatus(d.Status),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func toListingDocument(l *domain.Listing) listingDocument {
	return listingDocument{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		OwnerEmail:  l.OwnerEmail,
		Title:       l.Title,
		Description: l.Description,
		Type:        l.Type,
		Price:       l.Price,
		Surface:     l.Surface,
		Street:      l.Address.Street,
		City:        l.Address.City,
		ZipCode:     l.Address.ZipCode,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		PublishedAt: l.PublishedAt,
		Images:      toImageDocuments(l.Images),
	}
}

func toImageDocuments(images []domain.Image) []imageDocument {
	docs := make([]imageDocument, 0, len(images))
	for _, img := range images {
		docs = append(docs, imageDocument{ID: img.ID, URL: img.URL, Key: img.Key, Order: img.Order, CreatedAt: img.CreatedAt})
	}
	return docs
}

func (d listingDocument) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		OwnerEmail:  d.OwnerEmail,
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		Price:       d.Price,
		Surface:     d.Surface,
		Address:     domain.Address{Street: d.Street, City: d.City, ZipCode: d.ZipCode},
		Status:      domain.ListingStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		Images:      d.images(),
	}
	if d.PublishedAt != nil {
		published := d.PublishedAt.UTC()
		l.PublishedAt = &published
	}
	return l
}

// images returns the embedded images sorted by order.
func (d listingDocument) images() []domain.Image {
	out := make([]domain.Image, 0, len(d.Images))
	for _, img := range d.Images {
		out = append(out, domain.Image{
			ID:        img.ID,
			ListingID: d.ID,
			URL:       img.URL,
			Key:       img.Key,
			Order:     img.Order,
			CreatedAt: img.CreatedAt.UTC(),
		})
	}
	sortImages(out)
	return out
}
