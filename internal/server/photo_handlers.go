package server

import (
	"io"
	"strconv"

	"picwedding/internal/chart"
	"picwedding/internal/models"
	"picwedding/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPhotos returns one page of the live gallery view.
// GET /api/photos?page=2
func (s *Server) GetPhotos(c *fiber.Ctx) error {
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return respondAppError(c, models.NewValidationError("page must be a positive integer"))
		}
		// Out-of-range targets are ignored; the current page is returned as-is.
		s.pageCache.GoToPage(page)
	}

	page := s.pageCache.Page()
	photos := s.pageCache.Slice(page)
	if photos == nil {
		photos = []models.Photo{}
	}

	// The snapshot covers only the materialized window; the total count comes
	// from the store so pagination metadata stays accurate beyond it.
	total, err := s.store.Count(c.UserContext())
	if err != nil {
		total = int64(s.pageCache.Len())
	}

	return c.JSON(fiber.Map{
		"photos":      photos,
		"page":        page,
		"page_size":   s.pageCache.PageSize(),
		"total_pages": s.pageCache.TotalPages(),
		"total":       total,
		"loading":     s.pageCache.Loading(),
	})
}

// GetTopPhotos returns the most-liked ranking.
// GET /api/photos/top?refresh=true forces a re-fetch ahead of the next change tick.
func (s *Server) GetTopPhotos(c *fiber.Ctx) error {
	if c.Query("refresh") == "true" {
		if err := s.topCache.Refresh(c.UserContext()); err != nil {
			return respondAppError(c, err)
		}
	}

	photos := s.topCache.Photos()
	if photos == nil {
		photos = []models.Photo{}
	}

	return c.JSON(fiber.Map{
		"photos":  photos,
		"loading": s.topCache.Loading(),
	})
}

// GetChart returns the donut-chart segments derived from the current ranking.
// GET /api/photos/chart
func (s *Server) GetChart(c *fiber.Ctx) error {
	segments := chart.Segments(s.topCache.Photos())
	if segments == nil {
		segments = []chart.Segment{}
	}
	return c.JSON(fiber.Map{
		"segments": segments,
	})
}

// ToggleLike flips the calling device's like for a photo.
// POST /api/photos/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	deviceID, err := requireDeviceID(c)
	if err != nil {
		return respondAppError(c, err)
	}
	photoID := c.Params("id")

	ctx := c.UserContext()
	liked, err := s.coordinator.Toggle(ctx, deviceID, photoID)
	if err != nil {
		// The flip was already rolled back; report the settled state alongside
		// the failure so the client can reconcile.
		return respondAppError(c, err)
	}

	if liked {
		s.publishEvent(ctx, EventPhotoLiked, fiber.Map{"id": photoID})
	}

	return c.JSON(fiber.Map{
		"id":        photoID,
		"liked":     liked,
		"animating": s.coordinator.Animating(ctx, deviceID, photoID),
	})
}

// GetLikedPhotos returns the calling device's liked photo ids.
// GET /api/photos/likes
func (s *Server) GetLikedPhotos(c *fiber.Ctx) error {
	deviceID, err := requireDeviceID(c)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked": s.coordinator.Liked(c.UserContext(), deviceID),
	})
}

// UploadPhoto handles a guest photo upload.
// POST /api/photos (multipart form, field "photo")
func (s *Server) UploadPhoto(c *fiber.Ctx) error {
	photo, err := s.handleUpload(c)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishEvent(c.UserContext(), EventPhotoCreated, photo)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "✨ ¡Foto compartida!",
		"photo":   photo,
	})
}

// handleUpload reads the multipart file and runs the upload pipeline. Shared
// by the guest and panel upload endpoints.
func (s *Server) handleUpload(c *fiber.Ctx) (*models.Photo, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return nil, models.NewValidationError("No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.photoService.Upload(c.UserContext(), service.UploadPhotoInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
}
