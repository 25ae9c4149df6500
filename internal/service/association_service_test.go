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
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

func TestTransferProject(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	fromOrgID := uuid.New()
	toOrgID := uuid.New()

	t.Run("missing target organization", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("Exists", ctx, toOrgID).Return(false, nil)

		err := svc.TransferProject(ctx, projectID, fromOrgID, toOrgID)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Target organization does not exist", apperrors.GetAppError(err).Message)
		projectRepo.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong source organization fails without mutation", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("Exists", ctx, toOrgID).Return(true, nil)
		projectRepo.On("Transfer", ctx, projectID, fromOrgID, toOrgID).Return(int64(0), nil)

		err := svc.TransferProject(ctx, projectID, fromOrgID, toOrgID)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("succeeds when exactly one row is modified", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("Exists", ctx, toOrgID).Return(true, nil)
		projectRepo.On("Transfer", ctx, projectID, fromOrgID, toOrgID).Return(int64(1), nil)

		assert.NoError(t, svc.TransferProject(ctx, projectID, fromOrgID, toOrgID))
	})
}

func TestListOrganizationProjects(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("unknown organization", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(nil, apperrors.NotFound("organization"))

		_, err := svc.ListOrganizationProjects(ctx, orgID, ProjectListOptions{})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("defaults to createdAt desc and scopes the filter", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(&domain.Organization{ID: orgID}, nil)
		projectRepo.On("List", ctx, mock.MatchedBy(func(f domain.ProjectFilter) bool {
			return f.OrganizationID != nil && *f.OrganizationID == orgID
		}), 20, 0, "createdAt", "desc").Return([]domain.Project{{ID: uuid.New()}}, int64(1), nil)

		list, err := svc.ListOrganizationProjects(ctx, orgID, ProjectListOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.TotalCount)
		assert.Len(t, list.Projects, 1)
		assert.False(t, list.HasMore)
	})

	t.Run("reports more pages", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(&domain.Organization{ID: orgID}, nil)
		projectRepo.On("List", ctx, mock.Anything, 2, 0, "createdAt", "desc").
			Return([]domain.Project{{}, {}}, int64(5), nil)

		list, err := svc.ListOrganizationProjects(ctx, orgID, ProjectListOptions{Limit: 2})
		require.NoError(t, err)
		assert.True(t, list.HasMore)
	})
}

func TestArchiveOrganizationProjects(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("second run modifies zero projects", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(&domain.Organization{ID: orgID}, nil)
		projectRepo.On("ArchiveByOrganization", ctx, orgID).Return(int64(3), nil).Once()
		projectRepo.On("ArchiveByOrganization", ctx, orgID).Return(int64(0), nil).Once()

		modified, err := svc.ArchiveOrganizationProjects(ctx, orgID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), modified)

		modified, err = svc.ArchiveOrganizationProjects(ctx, orgID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), modified)
	})
}

func TestUpdateOrganizationProjectsVisibility(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("rejects invalid visibility", func(t *testing.T) {
		svc := NewAssociationService(new(MockProjectRepository), new(MockOrgRepository), zap.NewNop())

		_, err := svc.UpdateOrganizationProjectsVisibility(ctx, orgID, domain.Visibility("internal"))
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("updates every project", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(&domain.Organization{ID: orgID}, nil)
		projectRepo.On("UpdateVisibilityByOrganization", ctx, orgID, domain.VisibilityPublic).Return(int64(4), nil)

		modified, err := svc.UpdateOrganizationProjectsVisibility(ctx, orgID, domain.VisibilityPublic)
		require.NoError(t, err)
		assert.Equal(t, int64(4), modified)
	})
}

func TestGetOrganizationProjectStats(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("returns overlapping counts", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		orgRepo := new(MockOrgRepository)
		svc := NewAssociationService(projectRepo, orgRepo, zap.NewNop())

		orgRepo.On("GetByID", ctx, orgID).Return(&domain.Organization{ID: orgID}, nil)
		projectRepo.On("GetOrganizationStats", ctx, orgID).Return(&domain.OrganizationProjectStats{
			Total:    4,
			Active:   3,
			Archived: 1,
			Public:   2,
			Private:  2,
		}, nil)

		stats, err := svc.GetOrganizationProjectStats(ctx, orgID)
		require.NoError(t, err)
		// active overlaps with public/private, so the parts exceed the total
		assert.Equal(t, int64(4), stats.Total)
		assert.Equal(t, int64(4), stats.Public+stats.Private)
		assert.Equal(t, int64(4), stats.Active+stats.Archived)
	})
}

func TestValidateProjectSlug(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("free slug is available", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		svc := NewAssociationService(projectRepo, new(MockOrgRepository), zap.NewNop())

		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(false, nil)

		available, err := svc.ValidateProjectSlug(ctx, orgID, "site", nil)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("taken slug is not available", func(t *testing.T) {
		projectRepo := new(MockProjectRepository)
		svc := NewAssociationService(projectRepo, new(MockOrgRepository), zap.NewNop())

		projectRepo.On("SlugExists", ctx, orgID, "site", (*uuid.UUID)(nil)).Return(true, nil)

		available, err := svc.ValidateProjectSlug(ctx, orgID, "site", nil)
		require.NoError(t, err)
		assert.False(t, available)
	})
}

func TestVerifyProjectOrganization(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	orgID := uuid.New()

	projectRepo := new(MockProjectRepository)
	svc := NewAssociationService(projectRepo, new(MockOrgRepository), zap.NewNop())

	projectRepo.On("BelongsTo", ctx, projectID, orgID).Return(true, nil)

	belongs, err := svc.VerifyProjectOrganization(ctx, projectID, orgID)
	require.NoError(t, err)
	assert.True(t, belongs)
}
