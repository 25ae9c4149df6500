package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/middleware"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// Envelope is the uniform response shape for every API endpoint. Success is
// derived from the error and status, never set independently.
type Envelope struct {
	Success   bool           `json:"success"`
	Data      interface{}    `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp string         `json:"timestamp"`
	RateLimit *RateLimitInfo `json:"rateLimit,omitempty"`
}

// RateLimitInfo mirrors the X-RateLimit headers inside the body
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

func newEnvelope(c *fiber.Ctx, status int, data interface{}, errMsg string) Envelope {
	env := Envelope{
		Success:   errMsg == "" && status < fiber.StatusBadRequest,
		Data:      data,
		Error:     errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if result, ok := middleware.GetRateLimitResult(c); ok {
		env.RateLimit = &RateLimitInfo{
			Limit:     result.Limit,
			Remaining: result.Remaining,
			Reset:     result.Reset.Unix(),
		}
	}
	return env
}

// Respond writes a success envelope with the given status and data
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(newEnvelope(c, status, data, ""))
}

// RespondError writes an error envelope with the given status and message
func RespondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(newEnvelope(c, status, nil, message))
}

// ErrorHandler translates errors returned by handlers and middleware into the
// envelope. Internal details never reach clients; they are logged here.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		if appErr := apperrors.GetAppError(err); appErr != nil {
			status = appErr.StatusCode
			message = appErr.Message
		} else if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", fields...)
			middleware.CaptureError(c, err)
		} else {
			logger.Warn("request rejected", fields...)
		}

		return RespondError(c, status, message)
	}
}
