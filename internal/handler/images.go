package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/dto"
	"github.com/fanfie/fanfie-api/internal/middleware"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
	"github.com/fanfie/fanfie-api/internal/service"
)

// ImagesHandler handles image endpoints
type ImagesHandler struct {
	imageService *service.ImageService
	logger       *zap.Logger
}

// NewImagesHandler creates a new images handler
func NewImagesHandler(imageService *service.ImageService, logger *zap.Logger) *ImagesHandler {
	return &ImagesHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// ListImages handles GET /api/images
func (h *ImagesHandler) ListImages(c *fiber.Ctx) error {
	page, limit := parsePageQuery(c)

	images, err := h.imageService.List(c.Context(), page, limit)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, images)
}

// AddImages handles POST /api/images
func (h *ImagesHandler) AddImages(c *fiber.Ctx) error {
	var req dto.AddImagesRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	images, err := h.imageService.AddMany(c.Context(), req.Images)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusCreated, images)
}

// UploadImage handles POST /api/images/upload
func (h *ImagesHandler) UploadImage(c *fiber.Ctx) error {
	var req dto.UploadImageRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	image, err := h.imageService.Upload(c.Context(), &req)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusCreated, image)
}

// DeleteImages handles DELETE /api/images
func (h *ImagesHandler) DeleteImages(c *fiber.Ctx) error {
	var req dto.DeleteImagesRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.Validation("invalid image id: " + raw)
		}
		ids = append(ids, id)
	}

	deleted, err := h.imageService.Delete(c.Context(), ids)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"deletedCount": deleted})
}

// RegisterRoutes registers image routes
func (h *ImagesHandler) RegisterRoutes(app *fiber.App, admission *middleware.Admission, auth *middleware.AuthMiddleware) {
	images := app.Group("/api/images", admission.Handler("images"), auth.RequireAuth())

	images.Get("/", h.ListImages)
	images.Post("/", h.AddImages)
	images.Post("/upload", h.UploadImage)
	images.Delete("/", h.DeleteImages)
}
