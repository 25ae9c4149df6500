package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/dto"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

func activeOrg(id uuid.UUID) *domain.Organization {
	return &domain.Organization{
		ID:       id,
		Status:   domain.OrgStatusActive,
		Settings: domain.DefaultOrganizationSettings(),
	}
}

func TestProjectServiceCreate(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	orgID := uuid.New()

	t.Run("creates project under the organization", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewProjectService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(activeOrg(orgID), nil)
		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(false, nil)
		projectRepo.On("Create", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		project, err := svc.Create(ctx, &dto.CreateProjectRequest{
			Name:           "Site",
			Slug:           "site",
			OrganizationID: orgID.String(),
			Visibility:     "private",
		}, ownerID)
		require.NoError(t, err)

		assert.Equal(t, orgID, project.OrganizationID)
		assert.Equal(t, domain.ProjectStatusActive, project.Status)
		assert.Equal(t, domain.VisibilityPrivate, project.Visibility)
		require.Len(t, project.Metadata.Contributors, 1)
		assert.Equal(t, ownerID, project.Metadata.Contributors[0].UserID)
	})

	t.Run("invalid organization id", func(t *testing.T) {
		svc := NewProjectService(new(MockProjectRepository), new(MockOrgRepository), zap.NewNop())

		_, err := svc.Create(ctx, &dto.CreateProjectRequest{Name: "Site", OrganizationID: "not-a-uuid"}, ownerID)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown organization", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewProjectService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(nil, apperrors.NotFound("organization"))

		_, err := svc.Create(ctx, &dto.CreateProjectRequest{Name: "Site", OrganizationID: orgID.String()}, ownerID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("slug taken within the organization", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewProjectService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(activeOrg(orgID), nil)
		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, &dto.CreateProjectRequest{
			Name:           "Site",
			Slug:           "site",
			OrganizationID: orgID.String(),
		}, ownerID)
		assert.True(t, apperrors.IsConflict(err))
		projectRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("defaults visibility from organization settings", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewProjectService(projectRepo, orgRepo, zap.NewNop())

		org := activeOrg(orgID)
		org.Settings.DefaultProjectVisibility = domain.VisibilityPrivate
		orgRepo.On("GetByID", ctx, orgID).Return(org, nil)
		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(false, nil)
		projectRepo.On("Create", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		project, err := svc.Create(ctx, &dto.CreateProjectRequest{
			Name:           "Site",
			Slug:           "site",
			OrganizationID: orgID.String(),
		}, ownerID)
		require.NoError(t, err)
		assert.Equal(t, domain.VisibilityPrivate, project.Visibility)
	})

	t.Run("public project forbidden when the organization disallows it", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewProjectService(projectRepo, orgRepo, zap.NewNop())

		org := activeOrg(orgID)
		org.Settings.AllowPublicProjects = false
		orgRepo.On("GetByID", ctx, orgID).Return(org, nil)
		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(false, nil)

		_, err := svc.Create(ctx, &dto.CreateProjectRequest{
			Name:           "Site",
			Slug:           "site",
			OrganizationID: orgID.String(),
			Visibility:     "public",
		}, ownerID)
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestProjectServiceUpdate(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	projectID := uuid.New()

	existing := func() *domain.Project {
		return &domain.Project{
			ID:             projectID,
			OrganizationID: orgID,
			Name:           "Site",
			Slug:           "site",
			Visibility:     domain.VisibilityPrivate,
			Status:         domain.ProjectStatusActive,
			Settings:       domain.DefaultProjectSettings(),
		}
	}

	t.Run("slug change re-validated excluding self", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		svc := NewProjectService(projectRepo, new(MockOrgRepository), zap.NewNop())

		projectRepo.On("GetByID", ctx, projectID).Return(existing(), nil)
		projectRepo.On("SlugExists", ctx, orgID, "new-site", &projectID).Return(false, nil)
		projectRepo.On("Update", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		slug := "new-site"
		project, err := svc.Update(ctx, projectID, &dto.UpdateProjectRequest{Slug: &slug})
		require.NoError(t, err)
		assert.Equal(t, "new-site", project.Slug)
	})

	t.Run("slug conflict on update", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		svc := NewProjectService(projectRepo, new(MockOrgRepository), zap.NewNop())

		projectRepo.On("GetByID", ctx, projectID).Return(existing(), nil)
		projectRepo.On("SlugExists", ctx, orgID, "taken", &projectID).Return(true, nil)

		slug := "taken"
		_, err := svc.Update(ctx, projectID, &dto.UpdateProjectRequest{Slug: &slug})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unchanged slug skips the uniqueness check", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		svc := NewProjectService(projectRepo, new(MockOrgRepository), zap.NewNop())

		projectRepo.On("GetByID", ctx, projectID).Return(existing(), nil)
		projectRepo.On("Update", ctx, mock.AnythingOfType("*domain.Project")).Return(nil)

		slug := "site"
		_, err := svc.Update(ctx, projectID, &dto.UpdateProjectRequest{Slug: &slug})
		require.NoError(t, err)
		projectRepo.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
