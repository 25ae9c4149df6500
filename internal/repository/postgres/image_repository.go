package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fanfie/fanfie-api/internal/domain"
	"github.com/fanfie/fanfie-api/internal/pkg/database"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

// ImageRepository handles image record operations in PostgreSQL
type ImageRepository struct {
	db *database.PostgresDB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *database.PostgresDB) *ImageRepository {
	return &ImageRepository{db: db}
}

// CreateMany inserts a batch of image records in one transaction
func (r *ImageRepository) CreateMany(ctx context.Context, images []domain.Image) error {
	return database.Transaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO images (id, url, title, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, img := range images {
			if _, err := tx.Exec(ctx, query,
				img.ID,
				img.URL,
				img.Title,
				img.Description,
				img.CreatedAt,
				img.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create image: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves an image record by ID
func (r *ImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	query := `
		SELECT id, url, title, description, created_at, updated_at
		FROM images
		WHERE id = $1
	`

	var img domain.Image
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.URL,
		&img.Title,
		&img.Description,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("image")
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return &img, nil
}

// List retrieves a page of image records ordered by creation time
func (r *ImageRepository) List(ctx context.Context, limit, offset int) ([]domain.Image, int64, error) {
	query := `
		SELECT id, url, title, description, created_at, updated_at
		FROM images
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(
			&img.ID,
			&img.URL,
			&img.Title,
			&img.Description,
			&img.CreatedAt,
			&img.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM images`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	return images, total, nil
}

// DeleteByIDs deletes image records and returns the URLs of the deleted rows
// so stored objects can be cleaned up afterwards
func (r *ImageRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	query := `DELETE FROM images WHERE id = ANY($1) RETURNING url`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan deleted image: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}

// ListURLs returns every stored image URL, used by the orphan sweep
func (r *ImageRepository) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT url FROM images`)
	if err != nil {
		return nil, fmt.Errorf("failed to list image urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan image url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, nil
}
