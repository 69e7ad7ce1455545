package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewFetchError wraps a failed read against the photo store.
func NewFetchError(err error) *AppError {
	return &AppError{
		Code:    "FETCH_ERROR",
		Message: "Failed to fetch photos",
		Err:     err,
	}
}

// NewUpdateError wraps a failed like-count increment.
func NewUpdateError(err error) *AppError {
	return &AppError{
		Code:    "UPDATE_ERROR",
		Message: "Failed to update like count",
		Err:     err,
	}
}

// NewDeleteError wraps a failed photo deletion.
func NewDeleteError(err error) *AppError {
	return &AppError{
		Code:    "DELETE_ERROR",
		Message: "Failed to delete photo",
		Err:     err,
	}
}

// NewUploadError carries the human-readable message from the image host.
func NewUploadError(message string, err error) *AppError {
	if message == "" {
		message = "Error uploading image"
	}
	return &AppError{
		Code:    "UPLOAD_ERROR",
		Message: message,
		Err:     err,
	}
}

// NewStorageFullError marks the upload surface as permanently full for this
// process: the image host reported a quota/bandwidth/storage limit.
func NewStorageFullError() *AppError {
	return &AppError{
		Code:    "STORAGE_FULL",
		Message: "Photo storage is full",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
