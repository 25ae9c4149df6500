package domain

import (
	"time"

	"github.com/google/uuid"
)

// Image represents a stored capture. Images are standalone records and are
// not linked to a project or organization.
type Image struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImageList represents a paginated list of images
type ImageList struct {
	Images     []Image `json:"images"`
	TotalCount int64   `json:"total"`
	Page       int     `json:"page"`
	HasMore    bool    `json:"hasMore"`
}
