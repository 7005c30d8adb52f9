package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/middleware"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ImageService interface {
	AddImages(ctx context.Context, actor domain.Actor, listingID string, files []domain.ImageUpload) ([]domain.Image, error)
	DeleteImage(ctx context.Context, actor domain.Actor, listingID, imageID string) error
	Reorder(ctx context.Context, actor domain.Actor, listingID string, ids []string) error
}

// ImageHandler serves /api/properties/{id}/images.
type ImageHandler struct {
	images    ImageService
	maxMemory int64
	logger    *logger.Logger
}

// NewImageHandler keeps up to maxMemoryMB of each multipart form in memory; the rest spills to disk.
func NewImageHandler(images ImageService, maxMemoryMB int64, log *logger.Logger) *ImageHandler {
	if maxMemoryMB <= 0 {
		maxMemoryMB = 32
	}
	return &ImageHandler{images: images, maxMemory: maxMemoryMB << 20, logger: log.Named("ImageHTTPHandler")}
}

// Upload reads every part named "files" and appends them to the listing.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	// A body without files still reaches the usecase, so missing or foreign
	// listings answer 404/403 before the "no file" validation error.
	var headers []*multipart.FileHeader
	err := r.ParseMultipartForm(h.maxMemory)
	switch {
	case err == nil:
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn("Failed to remove multipart temp files", zap.Error(err))
			}
		}()
		headers = r.MultipartForm.File["files"]
	case errors.Is(err, http.ErrNotMultipart):
	default:
		writeError(w, r, h.logger, fmt.Errorf("%w: malformed multipart body: %v", domain.ErrInvalidInput, err))
		return
	}

	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	images, err := h.images.AddImages(r.Context(), middleware.ActorFromContext(r.Context()), listingID, uploads)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toImageResponses(images))
}

func openUploads(headers []*multipart.FileHeader) ([]domain.ImageUpload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	uploads := make([]domain.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("%w: cannot read file %s: %v", domain.ErrInvalidInput, fh.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, domain.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.images.DeleteImage(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "imageId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reorder passes the submitted ids through unchecked; the usecase compares them with the current set.
func (h *ImageHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.images.Reorder(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.ImageIDs); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
