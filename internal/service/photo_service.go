// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"picwedding/internal/middleware"
	"picwedding/internal/models"
	"picwedding/internal/photostore"
	"picwedding/internal/uploads"
)

// PhotoService handles the upload pipeline and moderation actions.
type PhotoService struct {
	store    photostore.Store
	uploader uploads.Uploader
	// full latches once the image host reports quota exhaustion; the whole
	// upload surface stays in "service full" mode until restart.
	full atomic.Bool
}

// UploadPhotoInput is the payload for uploading a new photo.
type UploadPhotoInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NewPhotoService creates a photo service. startFull seeds the service-full
// latch from configuration.
func NewPhotoService(store photostore.Store, uploader uploads.Uploader, startFull bool) *PhotoService {
	s := &PhotoService{store: store, uploader: uploader}
	s.full.Store(startFull)
	return s
}

// Full reports whether the upload surface is in service-full mode.
func (s *PhotoService) Full() bool {
	return s.full.Load()
}

// Upload compresses the image, sends it to the external host and records the
// photo with zero likes. A quota-exhaustion failure latches service-full mode.
func (s *PhotoService) Upload(ctx context.Context, in UploadPhotoInput) (*models.Photo, error) {
	if s.full.Load() {
		middleware.Uploads.WithLabelValues("full").Inc()
		return nil, models.NewStorageFullError()
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if in.ContentType != "" && !strings.HasPrefix(in.ContentType, "image/") {
		return nil, models.NewValidationError("File must be an image")
	}

	compressed, err := compressImage(in.Content)
	if err != nil {
		middleware.Uploads.WithLabelValues("invalid").Inc()
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, in.Filename, compressed)
	if err != nil {
		if uploads.IsQuotaExhausted(err) {
			s.full.Store(true)
			middleware.Uploads.WithLabelValues("full").Inc()
			middleware.Logger.WarnContext(ctx, "image host quota exhausted, entering service-full mode",
				slog.String("error", err.Error()))
			return nil, models.NewStorageFullError()
		}
		middleware.Uploads.WithLabelValues("error").Inc()
		return nil, err
	}

	photo, err := s.store.Create(ctx, url)
	if err != nil {
		middleware.Uploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	middleware.Uploads.WithLabelValues("ok").Inc()
	return photo, nil
}

// Delete removes a photo record. The hosted image is not touched; the image
// host offers no delete API on free accounts.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
