package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/dto"
	"github.com/fanfie/fanfie-api/internal/middleware"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
	"github.com/fanfie/fanfie-api/internal/service"
)

// OrganizationsHandler handles organization endpoints, including the
// organization-scoped project operations
type OrganizationsHandler struct {
	orgService   *service.OrgService
	associations *service.AssociationService
	logger       *zap.Logger
}

// NewOrganizationsHandler creates a new organizations handler
func NewOrganizationsHandler(orgService *service.OrgService, associations *service.AssociationService, logger *zap.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{
		orgService:   orgService,
		associations: associations,
		logger:       logger,
	}
}

// ListOrganizations handles GET /api/organizations
func (h *OrganizationsHandler) ListOrganizations(c *fiber.Ctx) error {
	page, limit := parsePageQuery(c)

	orgs, err := h.orgService.List(c.Context(), page, limit)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, orgs)
}

// CreateOrganization handles POST /api/organizations
func (h *OrganizationsHandler) CreateOrganization(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}

	var req dto.CreateOrganizationRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	org, err := h.orgService.Create(c.Context(), &req, userID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusCreated, org)
}

// GetOrganization handles GET /api/organizations/:orgId
func (h *OrganizationsHandler) GetOrganization(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	org, err := h.orgService.Get(c.Context(), orgID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, org)
}

// GetOrganizationBySlug handles GET /api/organizations/slug/:slug
func (h *OrganizationsHandler) GetOrganizationBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return apperrors.BadRequest("organization slug required")
	}

	org, err := h.orgService.GetBySlug(c.Context(), slug)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, org)
}

// UpdateOrganization handles PUT /api/organizations/:orgId
func (h *OrganizationsHandler) UpdateOrganization(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	var req dto.UpdateOrganizationRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	org, err := h.orgService.Update(c.Context(), orgID, &req)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/organizations/:orgId
func (h *OrganizationsHandler) DeleteOrganization(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	if err := h.orgService.Delete(c.Context(), orgID); err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// ListOrganizationProjects handles GET /api/organizations/:orgId/projects
func (h *OrganizationsHandler) ListOrganizationProjects(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	status, err := parseStatusQuery(c)
	if err != nil {
		return err
	}
	visibility, err := parseVisibilityQuery(c)
	if err != nil {
		return err
	}

	page, limit := parsePageQuery(c)
	opts := service.ProjectListOptions{
		Status:     status,
		Visibility: visibility,
		Page:       page,
		Limit:      limit,
		Sort:       c.Query("sort"),
		Order:      c.Query("order"),
	}

	projects, err := h.associations.ListOrganizationProjects(c.Context(), orgID, opts)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, projects)
}

// UpdateOrganizationProjects handles PATCH /api/organizations/:orgId/projects.
// Archives every active project or bulk-updates visibility, depending on the
// requested action.
func (h *OrganizationsHandler) UpdateOrganizationProjects(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	var req dto.UpdateOrganizationProjectsRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return err
	}

	var modified int64
	switch req.Action {
	case "archive":
		modified, err = h.associations.ArchiveOrganizationProjects(c.Context(), orgID)
	case "visibility":
		if req.Visibility == "" {
			return apperrors.Validation("visibility is required for the visibility action")
		}
		modified, err = h.associations.UpdateOrganizationProjectsVisibility(c.Context(), orgID, domain.Visibility(req.Visibility))
	}
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"modifiedCount": modified})
}

// GetOrganizationProjectStats handles GET /api/organizations/:orgId/projects/stats
func (h *OrganizationsHandler) GetOrganizationProjectStats(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	stats, err := h.associations.GetOrganizationProjectStats(c.Context(), orgID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, stats)
}

// VerifyOrganizationProject handles GET /api/organizations/:orgId/projects/verify
func (h *OrganizationsHandler) VerifyOrganizationProject(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}
	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		return apperrors.BadRequest("invalid projectId parameter")
	}

	belongs, err := h.associations.VerifyProjectOrganization(c.Context(), projectID, orgID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"belongs": belongs})
}

// ValidateProjectSlug handles GET /api/organizations/:orgId/projects/validate-slug
func (h *OrganizationsHandler) ValidateProjectSlug(c *fiber.Ctx) error {
	orgID, err := parseUUIDParam(c, "orgId")
	if err != nil {
		return err
	}

	slug := c.Query("slug")
	if slug == "" {
		return apperrors.BadRequest("slug query parameter required")
	}

	var excludeID *uuid.UUID
	if val := c.Query("exclude"); val != "" {
		id, err := uuid.Parse(val)
		if err != nil {
			return apperrors.BadRequest("invalid exclude parameter")
		}
		excludeID = &id
	}

	available, err := h.associations.ValidateProjectSlug(c.Context(), orgID, slug, excludeID)
	if err != nil {
		return err
	}

	return Respond(c, fiber.StatusOK, fiber.Map{"available": available})
}

// RegisterRoutes registers organization routes
func (h *OrganizationsHandler) RegisterRoutes(app *fiber.App, admission *middleware.Admission, auth *middleware.AuthMiddleware) {
	orgs := app.Group("/api/organizations", admission.Handler("default"), auth.RequireAuth())

	orgs.Get("/", h.ListOrganizations)
	orgs.Post("/", h.CreateOrganization)
	orgs.Get("/slug/:slug", h.GetOrganizationBySlug)
	orgs.Get("/:orgId", h.GetOrganization)
	orgs.Put("/:orgId", h.UpdateOrganization)
	orgs.Delete("/:orgId", h.DeleteOrganization)

	orgs.Get("/:orgId/projects", h.ListOrganizationProjects)
	orgs.Patch("/:orgId/projects", h.UpdateOrganizationProjects)
	orgs.Get("/:orgId/projects/stats", h.GetOrganizationProjectStats)
	orgs.Get("/:orgId/projects/validate-slug", h.ValidateProjectSlug)
	orgs.Get("/:orgId/projects/verify", h.VerifyOrganizationProject)
}
