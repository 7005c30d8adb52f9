package domain

import (
	"io"
	"time"
)

// Image points at an object in blob storage; Order defines the display sequence within a listing.
type Image struct {
	ID        string
	ListingID string
	URL       string
	Key       string
	Order     int
	CreatedAt time.Time
}

// ImageUpload is one file received for a listing, before it reaches blob storage.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// NextImageOrder returns max(order)+1, or 0 for an empty collection.
func NextImageOrder(images []Image) int {
	next := 0
	for _, img := range images {
		if img.Order+1 > next {
			next = img.Order + 1
		}
	}
	return next
}

// SameImageSet reports whether ids is exactly the id set of images, with no duplicates.
func SameImageSet(images []Image, ids []string) bool {
	if len(images) != len(ids) {
		return false
	}
	current := make(map[string]struct{}, len(images))
	for _, img := range images {
		current[img.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := current[id]; !ok {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// ApplyImageOrder sets each image's order to the index of its id in ids.
// Callers must check SameImageSet first.
func ApplyImageOrder(images []Image, ids []string) []Image {
	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	out := make([]Image, len(images))
	for i, img := range images {
		img.Order = position[img.ID]
		out[i] = img
	}
	return out
}
