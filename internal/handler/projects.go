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

// ProjectsHandler handles project endpoints
type ProjectsHandler struct {
	projectService *service.ProjectService
	associations   *service.AssociationService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler
func NewProjectsHandler(projectService *service.ProjectService, associations *service.AssociationService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		associations:   associations,
		logger:         logger,
	}
}

// ListProjects handles GET /api/projects
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	page, limit := parsePageQuery(c)

	projects, err := h.projectService.List(c.Context(), page, limit)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, projects)
}

// CreateProject handles POST /api/projects
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}

	var req dto.CreateProjectRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Create(c.Context(), &req, userID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusCreated, project)
}

// GetProject handles GET /api/projects/:projectId
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "projectId")
	if err != nil {
		return err
	}

	project, err := h.projectService.Get(c.Context(), projectID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, project)
}

// UpdateProject handles PUT /api/projects/:projectId
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.UpdateProjectRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Update(c.Context(), projectID, &req)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/:projectId
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "projectId")
	if err != nil {
		return err
	}

	if err := h.projectService.Delete(c.Context(), projectID); err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// TransferProject handles POST /api/projects/:projectId/transfer
func (h *ProjectsHandler) TransferProject(c *fiber.Ctx) error {
	projectID, err := parseUUIDParam(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.TransferProjectRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	fromOrgID, err := uuid.Parse(req.FromOrganizationID)
	if err != nil {
		return apperrors.Validation("invalid fromOrganizationId")
	}
	toOrgID, err := uuid.Parse(req.ToOrganizationID)
	if err != nil {
		return apperrors.Validation("invalid toOrganizationId")
	}

	if err := h.associations.TransferProject(c.Context(), projectID, fromOrgID, toOrgID); err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"transferred": true})
}

// RegisterRoutes registers project routes
func (h *ProjectsHandler) RegisterRoutes(app *fiber.App, admission *middleware.Admission, auth *middleware.AuthMiddleware) {
	projects := app.Group("/api/projects", admission.Handler("default"), auth.RequireAuth())

	projects.Get("/", h.ListProjects)
	projects.Post("/", h.CreateProject)
	projects.Get("/:projectId", h.GetProject)
	projects.Put("/:projectId", h.UpdateProject)
	projects.Delete("/:projectId", h.DeleteProject)
	projects.Post("/:projectId/transfer", h.TransferProject)
}
