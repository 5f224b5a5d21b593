package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/geocoding-gateway/internal/pkg/errors"
)

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

// SendError maps an error to its structured JSON body. Anything that is
// not an AppError is hidden behind a generic 500 so internal details
// never leak onto the wire.
func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*errors.AppError); ok {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
