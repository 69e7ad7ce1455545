package server

import "github.com/gofiber/fiber/v2"

// AdminUploadPhoto uploads a photo from the moderation panel. Same pipeline as
// the guest upload, different confirmation copy.
// POST /api/<panel>/photos
func (s *Server) AdminUploadPhoto(c *fiber.Ctx) error {
	photo, err := s.handleUpload(c)
	if err != nil {
		return respondAppError(c, err)
	}

	s.publishEvent(c.UserContext(), EventPhotoCreated, photo)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Foto subida correctamente",
		"photo":   photo,
	})
}

// AdminDeletePhoto removes a photo from the gallery.
// DELETE /api/<panel>/photos/:id
func (s *Server) AdminDeletePhoto(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.photoService.Delete(c.UserContext(), id); err != nil {
		return respondAppError(c, err)
	}

	s.publishEvent(c.UserContext(), EventPhotoDeleted, fiber.Map{"id": id})

	return c.JSON(fiber.Map{
		"message": "Foto eliminada",
		"id":      id,
	})
}
