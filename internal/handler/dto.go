package handler

import (
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/usecase"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	IsAdmin  bool   `json:"isAdmin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toAuthResponse(res *usecase.AuthResult) authResponse {
	return authResponse{
		ID:        res.User.ID,
		Email:     res.User.Email,
		IsAdmin:   res.User.IsAdmin(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin(),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

type updateUserRequest struct {
	IsAdmin *bool   `json:"isAdmin"`
	Status  *string `json:"status"`
}

func (r updateUserRequest) input() usecase.UpdateUserInput {
	in := usecase.UpdateUserInput{IsAdmin: r.IsAdmin}
	if r.Status != nil {
		status := domain.UserStatus(*r.Status)
		in.Status = &status
	}
	return in
}

type addressDTO struct {
	Street  string `json:"street" validate:"max=255"`
	City    string `json:"city" validate:"max=100"`
	ZipCode string `json:"zipCode" validate:"max=10"`
}

// listingRequest is the body of create and update.
type listingRequest struct {
	Title       string     `json:"title" validate:"required,max=120"`
	Description string     `json:"description"`
	Type        string     `json:"type" validate:"max=50"`
	Price       float64    `json:"price" validate:"gt=0"`
	Surface     float64    `json:"surface" validate:"gte=0"`
	Address     addressDTO `json:"address"`
}

func (r listingRequest) fields() domain.ListingFields {
	return domain.ListingFields{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Price:       r.Price,
		Surface:     r.Surface,
		Address: domain.Address{
			Street:  r.Address.Street,
			City:    r.Address.City,
			ZipCode: r.Address.ZipCode,
		},
	}
}

type imageResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

func toImageResponses(images []domain.Image) []imageResponse {
	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, imageResponse{ID: img.ID, URL: img.URL, Order: img.Order, CreatedAt: img.CreatedAt})
	}
	return out
}

type listingResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	OwnerEmail  string          `json:"ownerEmail,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Price       float64         `json:"price"`
	Surface     float64         `json:"surface"`
	Address     addressDTO      `json:"address"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	PublishedAt *time.Time      `json:"publishedAt"`
	Images      []imageResponse `json:"images"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID,
		UserID:      l.OwnerID,
		OwnerEmail:  l.OwnerEmail,
		Title:       l.Title,
		Description: l.Description,
		Type:        l.Type,
		Price:       l.Price,
		Surface:     l.Surface,
		Address:     addressDTO{Street: l.Address.Street, City: l.Address.City, ZipCode: l.Address.ZipCode},
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		PublishedAt: l.PublishedAt,
		Images:      toImageResponses(l.Images),
	}
}

type reorderRequest struct {
	ImageIDs []string `json:"imageIds"`
}

type summaryResponse struct {
	TotalUsers               int      `json:"totalUsers"`
	ActiveUsers              int      `json:"activeUsers"`
	TotalListings            int      `json:"totalListings"`
	DraftListings            int      `json:"draftListings"`
	PublishedListings        int      `json:"publishedListings"`
	ArchivedListings         int      `json:"archivedListings"`
	AvgMinutesDraftToPublish *float64 `json:"avgMinutesDraftToPublish"`
}

func toSummaryResponse(s *domain.Summary) summaryResponse {
	return summaryResponse{
		TotalUsers:               s.TotalUsers,
		ActiveUsers:              s.ActiveUsers,
		TotalListings:            s.TotalListings,
		DraftListings:            s.DraftListings,
		PublishedListings:        s.PublishedListings,
		ArchivedListings:         s.ArchivedListings,
		AvgMinutesDraftToPublish: s.AvgMinutesDraftToPublish,
	}
}

type timelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type timelineResponse struct {
	Users             []timelinePoint `json:"users"`
	Listings          []timelinePoint `json:"listings"`
	PublishedListings []timelinePoint `json:"publishedListings"`
}

func toTimelinePoints(points []domain.TimelinePoint) []timelinePoint {
	out := make([]timelinePoint, 0, len(points))
	for _, p := range points {
		out = append(out, timelinePoint{Date: p.Date, Count: p.Count})
	}
	return out
}

type estimateRequest struct {
	Description string `json:"description" validate:"required"`
	IsForSale   bool   `json:"isForSale"`
}

type estimateResponse struct {
	EstimatedPrice float64 `json:"estimatedPrice"`
	MinPrice       float64 `json:"minPrice"`
	MaxPrice       float64 `json:"maxPrice"`
	Explanation    string  `json:"explanation"`
}

type enhanceRequest struct {
	Description string `json:"description" validate:"required"`
}

type enhanceResponse struct {
	EnhancedDescription string `json:"enhancedDescription"`
}
