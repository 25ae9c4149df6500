package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/fanfie/fanfie-api/internal/domain"
)

// OrgRepository defines organization persistence operations
type OrgRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]domain.Organization, int64, error)
	Update(ctx context.Context, org *domain.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProjectRepository defines project persistence operations
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, filter domain.ProjectFilter, limit, offset int, sort, order string) ([]domain.Project, int64, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	Transfer(ctx context.Context, projectID, fromOrgID, toOrgID uuid.UUID) (int64, error)
	GetOrganizationStats(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationProjectStats, error)
	ArchiveByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error)
	UpdateVisibilityByOrganization(ctx context.Context, orgID uuid.UUID, visibility domain.Visibility) (int64, error)
	SlugExists(ctx context.Context, orgID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error)
	BelongsTo(ctx context.Context, projectID, orgID uuid.UUID) (bool, error)
}

// ImageRepository defines image record persistence operations
type ImageRepository interface {
	CreateMany(ctx context.Context, images []domain.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error)
	List(ctx context.Context, limit, offset int) ([]domain.Image, int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
	ListURLs(ctx context.Context) ([]string, error)
}

// UserRepository defines user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ObjectStore defines the image object storage backend
type ObjectStore interface {
	Put(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, objectName string) error
	List(ctx context.Context) ([]string, error)
}

// CleanupEnqueuer schedules background cleanup work
type CleanupEnqueuer interface {
	EnqueueOrganizationCleanup(ctx context.Context, orgID uuid.UUID) error
	EnqueueObjectRemoval(ctx context.Context, urls []string, delay time.Duration) error
}
