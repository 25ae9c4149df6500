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

// OrgRepository handles organization data operations in PostgreSQL.
// Members and settings are stored as JSONB documents on the row.
type OrgRepository struct {
	db *database.PostgresDB
}

// NewOrgRepository creates a new organization repository
func NewOrgRepository(db *database.PostgresDB) *OrgRepository {
	return &OrgRepository{db: db}
}

// Create creates a new organization
func (r *OrgRepository) Create(ctx context.Context, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, description, status, members, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	members, err := json.Marshal(org.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}
	settings, err := json.Marshal(org.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Description,
		org.Status,
		members,
		settings,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID
func (r *OrgRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `
		SELECT id, name, slug, description, status, members, settings, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves an organization by slug
func (r *OrgRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	query := `
		SELECT id, name, slug, description, status, members, settings, created_at, updated_at
		FROM organizations
		WHERE slug = $1
	`

	return r.scanOne(r.db.Pool.QueryRow(ctx, query, slug))
}

func (r *OrgRepository) scanOne(row pgx.Row) (*domain.Organization, error) {
	var org domain.Organization
	var members, settings []byte

	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Description,
		&org.Status,
		&members,
		&settings,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("organization")
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if err := json.Unmarshal(members, &org.Members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	if err := json.Unmarshal(settings, &org.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return &org, nil
}

// List retrieves a page of organizations ordered by creation time
func (r *OrgRepository) List(ctx context.Context, limit, offset int) ([]domain.Organization, int64, error) {
	query := `
		SELECT id, name, slug, description, status, members, settings, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var org domain.Organization
		var members, settings []byte
		if err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Slug,
			&org.Description,
			&org.Status,
			&members,
			&settings,
			&org.CreatedAt,
			&org.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan organization: %w", err)
		}
		if err := json.Unmarshal(members, &org.Members); err != nil {
			return nil, 0, fmt.Errorf("failed to decode members: %w", err)
		}
		if err := json.Unmarshal(settings, &org.Settings); err != nil {
			return nil, 0, fmt.Errorf("failed to decode settings: %w", err)
		}
		orgs = append(orgs, org)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	return orgs, total, nil
}

// Update updates an organization's mutable fields
func (r *OrgRepository) Update(ctx context.Context, org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, description = $3, status = $4, members = $5, settings = $6, updated_at = NOW()
		WHERE id = $1
	`

	members, err := json.Marshal(org.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}
	settings, err := json.Marshal(org.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, org.ID, org.Name, org.Description, org.Status, members, settings)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("organization")
	}

	return nil
}

// Delete deletes an organization. Projects are removed in the same
// transaction so a cascade never half-completes.
func (r *OrgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Transaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE organization_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete organization projects: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete organization: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("organization")
		}
		return nil
	})
}

// SlugExists checks if a slug is already taken, optionally excluding one
// organization for update-in-place checks
func (r *OrgRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error

	if excludeID != nil {
		query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1 AND id != $2)`
		err = r.db.Pool.QueryRow(ctx, query, slug, *excludeID).Scan(&exists)
	} else {
		query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`
		err = r.db.Pool.QueryRow(ctx, query, slug).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return exists, nil
}

// Exists checks whether an organization exists
func (r *OrgRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check organization: %w", err)
	}
	return exists, nil
}
