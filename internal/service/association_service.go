package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// ProjectListOptions controls organization project listings
type ProjectListOptions struct {
	Status     *domain.ProjectStatus
	Visibility *domain.Visibility
	Page       int
	Limit      int
	Sort       string
	Order      string
}

// AssociationService enforces the organization-project ownership rules that
// plain CRUD would skip: scoped listings, transfer semantics, bulk updates,
// and slug uniqueness within an organization.
type AssociationService struct {
	projectRepo ProjectRepository
	orgRepo     OrgRepository
	logger      *zap.Logger
}

// NewAssociationService creates a new association service
func NewAssociationService(projectRepo ProjectRepository, orgRepo OrgRepository, logger *zap.Logger) *AssociationService {
	return &AssociationService{
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		logger:      logger,
	}
}

// ListOrganizationProjects returns a page of the organization's projects plus
// the total count matching the filter. Default sort is createdAt descending.
func (s *AssociationService) ListOrganizationProjects(ctx context.Context, orgID uuid.UUID, opts ProjectListOptions) (*domain.ProjectList, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	page, limit := normalizePage(opts.Page, opts.Limit)
	sort := opts.Sort
	if sort == "" {
		sort = "createdAt"
	}
	order := opts.Order
	if order != "asc" {
		order = "desc"
	}

	filter := domain.ProjectFilter{
		OrganizationID: &orgID,
		Status:         opts.Status,
		Visibility:     opts.Visibility,
	}

	projects, total, err := s.projectRepo.List(ctx, filter, limit, (page-1)*limit, sort, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization projects: %w", err)
	}

	return &domain.ProjectList{
		Projects:   projects,
		TotalCount: total,
		Page:       page,
		HasMore:    int64(page*limit) < total,
	}, nil
}

// VerifyProjectOrganization reports whether the project belongs to the
// organization
func (s *AssociationService) VerifyProjectOrganization(ctx context.Context, projectID, orgID uuid.UUID) (bool, error) {
	return s.projectRepo.BelongsTo(ctx, projectID, orgID)
}

// TransferProject moves a project from one organization to another. The
// target must exist, and the mutation is a single conditional update: zero
// rows modified means the project does not belong to the source
// organization, and nothing was changed.
func (s *AssociationService) TransferProject(ctx context.Context, projectID, fromOrgID, toOrgID uuid.UUID) error {
	exists, err := s.orgRepo.Exists(ctx, toOrgID)
	if err != nil {
		return fmt.Errorf("failed to check target organization: %w", err)
	}
	if !exists {
		return apperrors.New(apperrors.CodeNotFound, "Target organization does not exist", 404)
	}

	modified, err := s.projectRepo.Transfer(ctx, projectID, fromOrgID, toOrgID)
	if err != nil {
		return fmt.Errorf("failed to transfer project: %w", err)
	}
	if modified == 0 {
		return apperrors.Forbidden("project does not belong to source organization")
	}

	s.logger.Info("project transferred",
		zap.String("project_id", projectID.String()),
		zap.String("from_organization_id", fromOrgID.String()),
		zap.String("to_organization_id", toOrgID.String()),
	)

	return nil
}

// GetOrganizationProjectStats returns the five project counts for an
// organization. The counts overlap rather than partition: an active project
// is also counted under public or private.
func (s *AssociationService) GetOrganizationProjectStats(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationProjectStats, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.projectRepo.GetOrganizationStats(ctx, orgID)
}

// ArchiveOrganizationProjects archives every active project in the
// organization and returns the number modified. Re-running it modifies zero
// projects.
func (s *AssociationService) ArchiveOrganizationProjects(ctx context.Context, orgID uuid.UUID) (int64, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return 0, err
	}

	modified, err := s.projectRepo.ArchiveByOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("organization projects archived",
		zap.String("organization_id", orgID.String()),
		zap.Int64("modified", modified),
	)

	return modified, nil
}

// UpdateOrganizationProjectsVisibility sets the visibility of every project
// in the organization and returns the number modified
func (s *AssociationService) UpdateOrganizationProjectsVisibility(ctx context.Context, orgID uuid.UUID, visibility domain.Visibility) (int64, error) {
	if !visibility.Valid() {
		return 0, apperrors.Validation("invalid visibility")
	}
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return 0, err
	}

	modified, err := s.projectRepo.UpdateVisibilityByOrganization(ctx, orgID, visibility)
	if err != nil {
		return 0, err
	}

	s.logger.Info("organization projects visibility updated",
		zap.String("organization_id", orgID.String()),
		zap.String("visibility", string(visibility)),
		zap.Int64("modified", modified),
	)

	return modified, nil
}

// ValidateProjectSlug reports whether the slug is free within the
// organization, excluding one project for update-in-place checks
func (s *AssociationService) ValidateProjectSlug(ctx context.Context, orgID uuid.UUID, slug string, excludeProjectID *uuid.UUID) (bool, error) {
	exists, err := s.projectRepo.SlugExists(ctx, orgID, slug, excludeProjectID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
