package server

import (
	"errors"

	"picwedding/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondAppError maps application error codes to HTTP statuses and writes the
// standardized error body.
func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case "VALIDATION_ERROR":
		status = fiber.StatusBadRequest
	case "NOT_FOUND":
		status = fiber.StatusNotFound
	case "STORAGE_FULL":
		status = fiber.StatusInsufficientStorage
	case "UPLOAD_ERROR", "UPDATE_ERROR":
		status = fiber.StatusBadGateway
	}
	return models.RespondWithError(c, status, appErr)
}

// requireDeviceID extracts the guest device ID from the X-Device-ID header.
func requireDeviceID(c *fiber.Ctx) (string, error) {
	deviceID := c.Get("X-Device-ID")
	if deviceID == "" {
		return "", models.NewValidationError("X-Device-ID header is required")
	}
	return deviceID, nil
}
