package postgres

import (
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:20;not null"`
	Status       string    `gorm:"size:20;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

type propertyModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Owner       *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Title       string     `gorm:"size:120;not null"`
	Description string     `gorm:"not null"`
	Type        string     `gorm:"size:50;not null"`
	Price       float64    `gorm:"not null"`
	Surface     float64    `gorm:"not null"`
	Street      string     `gorm:"size:255;not null"`
	City        string     `gorm:"size:100;not null"`
	ZipCode     string     `gorm:"size:10;not null"`
	Status      string     `gorm:"size:20;not null;index"`
	CreatedAt   time.Time  `gorm:"not null"`
	PublishedAt *time.Time
	Images      []imageModel `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

func (propertyModel) TableName() string { return "properties" }

type imageModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null"`
	URL        string    `gorm:"not null"`
	ObjectKey  string    `gorm:"not null"`
	SortOrder  int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (imageModel) TableName() string { return "images" }

func toUserModel(u *domain.User, id uuid.UUID) userModel {
	return userModel{
		ID:           id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
	}
}

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.String(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Status:       domain.UserStatus(m.Status),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func (m propertyModel) toDomain() *domain.Listing {
	l := &domain.Listing{
		ID:          m.ID.String(),
		OwnerID:     m.UserID.String(),
		Title:       m.Title,
		Description: m.Description,
		Type:        m.Type,
		Price:       m.Price,
		Surface:     m.Surface,
		Address:     domain.Address{Street: m.Street, City: m.City, ZipCode: m.ZipCode},
		Status:      domain.ListingStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		Images:      make([]domain.Image, 0, len(m.Images)),
	}
	if m.Owner != nil {
		l.OwnerEmail = m.Owner.Email
	}
	if m.PublishedAt != nil {
		published := m.PublishedAt.UTC()
		l.PublishedAt = &published
	}
	for _, img := range m.Images {
		l.Images = append(l.Images, img.toDomain())
	}
	return l
}

func (m imageModel) toDomain() domain.Image {
	return domain.Image{
		ID:        m.ID.String(),
		ListingID: m.PropertyID.String(),
		URL:       m.URL,
		Key:       m.ObjectKey,
		Order:     m.SortOrder,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// listingColumns are the mutable columns written by Update.
// listingColumns is the update set of a listing. published_at is write-once: a stale
// copy without a publication time cannot clear it, nor can a later publish replace it.
func listingColumns(l *domain.Listing) map[string]interface{} {
	return map[string]interface{}{
		"title":        l.Title,
		"description":  l.Description,
		"type":         l.Type,
		"price":        l.Price,
		"surface":      l.Surface,
		"street":       l.Address.Street,
		"city":         l.Address.City,
		"zip_code":     l.Address.ZipCode,
		"status":       string(l.Status),
		"published_at": gorm.Expr("COALESCE(published_at, ?)", l.PublishedAt),
	}
}
