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

// OrgService handles organization operations
type OrgService struct {
	orgRepo  OrgRepository
	enqueuer CleanupEnqueuer
	logger   *zap.Logger
}

// NewOrgService creates a new organization service
func NewOrgService(orgRepo OrgRepository, enqueuer CleanupEnqueuer, logger *zap.Logger) *OrgService {
	return &OrgService{
		orgRepo:  orgRepo,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Create creates a new organization. Slugs are globally unique: a taken slug
// is a conflict, never silently suffixed.
func (s *OrgService) Create(ctx context.Context, req *dto.CreateOrganizationRequest, ownerID uuid.UUID) (*domain.Organization, error) {
	slug := req.Slug
	if slug == "" {
		slug = domain.GenerateSlug(req.Name)
	}
	if slug == "" {
		return nil, apperrors.Validation("name must contain at least one slug-safe character")
	}

	exists, err := s.orgRepo.SlugExists(ctx, slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("organization slug already in use").WithDetail("slug", slug)
	}

	now := time.Now()
	org := &domain.Organization{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Status:      domain.OrgStatusActive,
		Settings:    domain.DefaultOrganizationSettings(),
		Members: []domain.OrganizationMember{
			{UserID: ownerID, Role: domain.OrgRoleOwner, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyOrgSettings(&org.Settings, req.Settings)

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)

	return org, nil
}

// Get retrieves an organization by ID
func (s *OrgService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

// GetBySlug retrieves an organization by slug
func (s *OrgService) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return s.orgRepo.GetBySlug(ctx, slug)
}

// List retrieves a page of organizations
func (s *OrgService) List(ctx context.Context, page, limit int) (*domain.OrganizationList, error) {
	page, limit = normalizePage(page, limit)

	orgs, total, err := s.orgRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return &domain.OrganizationList{
		Organizations: orgs,
		TotalCount:    total,
		HasMore:       int64(page*limit) < total,
	}, nil
}

// Update updates an organization
func (s *OrgService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateOrganizationRequest) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.Status != nil {
		status := domain.OrgStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.Validation("invalid organization status")
		}
		org.Status = status
	}
	applyOrgSettings(&org.Settings, req.Settings)
	org.UpdatedAt = time.Now()

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}

	return org, nil
}

// Delete deletes an organization, cascading to its projects, and schedules
// background cleanup of any stored objects
func (s *OrgService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orgRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueOrganizationCleanup(ctx, id); err != nil {
			// The rows are gone; object cleanup is best-effort and the
			// orphan sweep will catch anything missed.
			s.logger.Error("failed to enqueue organization cleanup",
				zap.Error(err),
				zap.String("organization_id", id.String()),
			)
		}
	}

	s.logger.Info("organization deleted", zap.String("organization_id", id.String()))

	return nil
}

func applyOrgSettings(settings *domain.OrganizationSettings, req *dto.OrganizationSettings) {
	if req == nil {
		return
	}
	if req.AllowPublicProjects != nil {
		settings.AllowPublicProjects = *req.AllowPublicProjects
	}
	if req.DefaultProjectVisibility != nil {
		settings.DefaultProjectVisibility = domain.Visibility(*req.DefaultProjectVisibility)
	}
	if req.MaxMembers != nil {
		settings.MaxMembers = req.MaxMembers
	}
	if req.CustomDomain != nil {
		settings.CustomDomain = req.CustomDomain
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
