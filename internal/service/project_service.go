package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/dto"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// ProjectService handles project CRUD operations
type ProjectService struct {
	projectRepo ProjectRepository
	orgRepo     OrgRepository
	logger      *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo ProjectRepository, orgRepo OrgRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		logger:      logger,
	}
}

// Create creates a new project under an existing organization. The slug must
// be unique within that organization; the same slug may exist in others.
func (s *ProjectService) Create(ctx context.Context, req *dto.CreateProjectRequest, ownerID uuid.UUID) (*domain.Project, error) {
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, apperrors.Validation("invalid organization id")
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = domain.GenerateSlug(req.Name)
	}
	if slug == "" {
		return nil, apperrors.Validation("name must contain at least one slug-safe character")
	}

	exists, err := s.projectRepo.SlugExists(ctx, orgID, slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("project slug already in use within organization").WithDetail("slug", slug)
	}

	visibility := org.Settings.DefaultProjectVisibility
	if req.Visibility != "" {
		visibility = domain.Visibility(req.Visibility)
	}
	if visibility == domain.VisibilityPublic && !org.Settings.AllowPublicProjects {
		return nil, apperrors.Forbidden("organization does not allow public projects")
	}

	now := time.Now()
	project := &domain.Project{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           req.Name,
		Slug:           slug,
		Description:    req.Description,
		Visibility:     visibility,
		Status:         domain.ProjectStatusActive,
		Settings:       domain.DefaultProjectSettings(),
		Metadata: domain.ProjectMetadata{
			Tags: req.Tags,
			Contributors: []domain.ProjectContributor{
				{UserID: ownerID, Role: domain.ContributorRoleOwner, JoinedAt: now},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProjectSettings(&project.Settings, req.Settings)

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("organization_id", orgID.String()),
		zap.String("slug", project.Slug),
	)

	return project, nil
}

// Get retrieves a project by ID
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// List retrieves a page of projects across all organizations
func (s *ProjectService) List(ctx context.Context, page, limit int) (*domain.ProjectList, error) {
	page, limit = normalizePage(page, limit)

	projects, total, err := s.projectRepo.List(ctx, domain.ProjectFilter{}, limit, (page-1)*limit, "createdAt", "desc")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return &domain.ProjectList{
		Projects:   projects,
		TotalCount: total,
		Page:       page,
		HasMore:    int64(page*limit) < total,
	}, nil
}

// Update updates a project. A slug change is re-validated against the
// project's organization, excluding the project itself.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProjectRequest) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != project.Slug {
		exists, err := s.projectRepo.SlugExists(ctx, project.OrganizationID, *req.Slug, &project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if exists {
			return nil, apperrors.Conflict("project slug already in use within organization").WithDetail("slug", *req.Slug)
		}
		project.Slug = *req.Slug
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Visibility != nil {
		project.Visibility = domain.Visibility(*req.Visibility)
	}
	if req.Status != nil {
		project.Status = domain.ProjectStatus(*req.Status)
	}
	if req.Tags != nil {
		project.Metadata.Tags = req.Tags
	}
	applyProjectSettings(&project.Settings, req.Settings)
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Delete deletes a project
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", zap.String("project_id", id.String()))

	return nil
}

func applyProjectSettings(settings *domain.ProjectSettings, req *dto.ProjectSettings) {
	if req == nil {
		return
	}
	if req.AllowComments != nil {
		settings.AllowComments = *req.AllowComments
	}
	if req.ModerateComments != nil {
		settings.ModerateComments = *req.ModerateComments
	}
	if req.EnableSharing != nil {
		settings.EnableSharing = *req.EnableSharing
	}
	if req.AllowDownloads != nil {
		settings.AllowDownloads = *req.AllowDownloads
	}
	if req.AllowedFileTypes != nil {
		settings.AllowedFileTypes = req.AllowedFileTypes
	}
}
