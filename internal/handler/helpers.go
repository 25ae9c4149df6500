package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fanfie/fanfie-api/internal/domain"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// parseUUIDParam parses a UUID path parameter
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid " + name)
	}
	return id, nil
}

// parseQueryInt parses an integer query parameter with a default value
func parseQueryInt(c *fiber.Ctx, key string, defaultValue int) int {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// parsePageQuery extracts page and limit query parameters
func parsePageQuery(c *fiber.Ctx) (page, limit int) {
	return parseQueryInt(c, "page", 1), parseQueryInt(c, "limit", 20)
}

// parseStatusQuery parses the optional status filter
func parseStatusQuery(c *fiber.Ctx) (*domain.ProjectStatus, error) {
	val := c.Query("status")
	if val == "" {
		return nil, nil
	}
	status := domain.ProjectStatus(val)
	if !status.Valid() {
		return nil, apperrors.BadRequest("invalid status filter")
	}
	return &status, nil
}

// parseVisibilityQuery parses the optional visibility filter
func parseVisibilityQuery(c *fiber.Ctx) (*domain.Visibility, error) {
	val := c.Query("visibility")
	if val == "" {
		return nil, nil
	}
	visibility := domain.Visibility(val)
	if !visibility.Valid() {
		return nil, apperrors.BadRequest("invalid visibility filter")
	}
	return &visibility, nil
}
