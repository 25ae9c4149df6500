package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/pkg/database"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// Sortable columns for project listings. Anything else falls back to
// created_at.
var projectSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"slug":      "slug",
}

// ProjectRepository handles project data operations in PostgreSQL
type ProjectRepository struct {
	db *database.PostgresDB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.PostgresDB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, organization_id, name, slug, description, visibility, status, settings, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	settings, err := json.Marshal(project.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	metadata, err := json.Marshal(project.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		project.ID,
		project.OrganizationID,
		project.Name,
		project.Slug,
		project.Description,
		project.Visibility,
		project.Status,
		settings,
		metadata,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT id, organization_id, name, slug, description, visibility, status, settings, metadata, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	var settings, metadata []byte

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Name,
		&project.Slug,
		&project.Description,
		&project.Visibility,
		&project.Status,
		&settings,
		&metadata,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("project")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := json.Unmarshal(settings, &project.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal(metadata, &project.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &project, nil
}

// List retrieves a filtered, sorted page of projects plus the total count
// matching the filter
func (r *ProjectRepository) List(ctx context.Context, filter domain.ProjectFilter, limit, offset int, sort, order string) ([]domain.Project, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	argN := 1

	if filter.OrganizationID != nil {
		where += fmt.Sprintf(" AND organization_id = $%d", argN)
		args = append(args, *filter.OrganizationID)
		argN++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, *filter.Status)
		argN++
	}
	if filter.Visibility != nil {
		where += fmt.Sprintf(" AND visibility = $%d", argN)
		args = append(args, *filter.Visibility)
		argN++
	}

	column, ok := projectSortColumns[sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, organization_id, name, slug, description, visibility, status, settings, metadata, created_at, updated_at
		FROM projects
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, column, direction, argN, argN+1)

	rows, err := r.db.Pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		var settings, metadata []byte
		if err := rows.Scan(
			&project.ID,
			&project.OrganizationID,
			&project.Name,
			&project.Slug,
			&project.Description,
			&project.Visibility,
			&project.Status,
			&settings,
			&metadata,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		if err := json.Unmarshal(settings, &project.Settings); err != nil {
			return nil, 0, fmt.Errorf("failed to decode settings: %w", err)
		}
		if err := json.Unmarshal(metadata, &project.Metadata); err != nil {
			return nil, 0, fmt.Errorf("failed to decode metadata: %w", err)
		}
		projects = append(projects, project)
	}

	countQuery := "SELECT COUNT(*) FROM projects " + where
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return projects, total, nil
}

// Update updates a project's mutable fields
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	query := `
		UPDATE projects
		SET name = $2, slug = $3, description = $4, visibility = $5, status = $6, settings = $7, metadata = $8, updated_at = NOW()
		WHERE id = $1
	`

	settings, err := json.Marshal(project.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	metadata, err := json.Marshal(project.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Slug,
		project.Description,
		project.Visibility,
		project.Status,
		settings,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("project")
	}

	return nil
}

// Delete deletes a project
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("project")
	}

	return nil
}

// Transfer moves a project between organizations in a single conditional
// update, so ownership verification and mutation are atomic. Returns the
// number of rows modified: zero means the project does not belong to the
// source organization (or does not exist).
func (r *ProjectRepository) Transfer(ctx context.Context, projectID, fromOrgID, toOrgID uuid.UUID) (int64, error) {
	query := `
		UPDATE projects
		SET organization_id = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, projectID, fromOrgID, toOrgID)
	if err != nil {
		return 0, fmt.Errorf("failed to transfer project: %w", err)
	}

	return tag.RowsAffected(), nil
}

// GetOrganizationStats returns the project counts for an organization. The
// counts overlap by design: active projects also count as public or private.
func (r *ProjectRepository) GetOrganizationStats(ctx context.Context, orgID uuid.UUID) (*domain.OrganizationProjectStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'archived'),
			COUNT(*) FILTER (WHERE visibility = 'public'),
			COUNT(*) FILTER (WHERE visibility = 'private')
		FROM projects
		WHERE organization_id = $1
	`

	var stats domain.OrganizationProjectStats
	err := r.db.Pool.QueryRow(ctx, query, orgID).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Archived,
		&stats.Public,
		&stats.Private,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project stats: %w", err)
	}

	return &stats, nil
}

// ArchiveByOrganization sets every active project in the organization to
// archived and returns the number of rows modified. Already-archived
// projects are untouched, so the operation is idempotent.
func (r *ProjectRepository) ArchiveByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error) {
	query := `
		UPDATE projects
		SET status = 'archived', updated_at = NOW()
		WHERE organization_id = $1 AND status = 'active'
	`

	tag, err := r.db.Pool.Exec(ctx, query, orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to archive projects: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateVisibilityByOrganization sets the visibility of every project in the
// organization regardless of current value
func (r *ProjectRepository) UpdateVisibilityByOrganization(ctx context.Context, orgID uuid.UUID, visibility domain.Visibility) (int64, error) {
	query := `
		UPDATE projects
		SET visibility = $2, updated_at = NOW()
		WHERE organization_id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, orgID, visibility)
	if err != nil {
		return 0, fmt.Errorf("failed to update project visibility: %w", err)
	}

	return tag.RowsAffected(), nil
}

// SlugExists checks if a slug is taken within an organization, optionally
// excluding one project for update-in-place checks
func (r *ProjectRepository) SlugExists(ctx context.Context, orgID uuid.UUID, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error

	if excludeID != nil {
		query := `SELECT EXISTS(SELECT 1 FROM projects WHERE organization_id = $1 AND slug = $2 AND id != $3)`
		err = r.db.Pool.QueryRow(ctx, query, orgID, slug, *excludeID).Scan(&exists)
	} else {
		query := `SELECT EXISTS(SELECT 1 FROM projects WHERE organization_id = $1 AND slug = $2)`
		err = r.db.Pool.QueryRow(ctx, query, orgID, slug).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return exists, nil
}

// BelongsTo reports whether the project's organization matches orgID
func (r *ProjectRepository) BelongsTo(ctx context.Context, projectID, orgID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND organization_id = $2)`
	if err := r.db.Pool.QueryRow(ctx, query, projectID, orgID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to verify project organization: %w", err)
	}
	return exists, nil
}
