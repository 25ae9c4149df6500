package dto

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
	"github.com/fanfie/fanfie-api/internal/validator"
)

// ParseAndValidate parses the request body into the given struct and
// validates it. Returns an AppError the caller propagates to the error
// handler.
func ParseAndValidate(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.BadRequest("invalid request body").WithError(err)
	}

	if err := validator.Validate(v); err != nil {
		appErr := apperrors.Validation("request validation failed")
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range validationErrors {
				appErr = appErr.WithDetail(ve.Field, ve.Message)
			}
		}
		return appErr
	}

	return nil
}
