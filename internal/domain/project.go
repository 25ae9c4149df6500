package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a project within an organization
type Project struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organizationId"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description,omitempty"`
	Visibility     Visibility      `json:"visibility"`
	Status         ProjectStatus   `json:"status"`
	Settings       ProjectSettings `json:"settings"`
	Metadata       ProjectMetadata `json:"metadata"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Related data (populated on demand)
	Organization *Organization `json:"organization,omitempty"`
}

// ProjectSettings represents project-specific settings
type ProjectSettings struct {
	AllowComments    bool     `json:"allowComments"`
	ModerateComments bool     `json:"moderateComments"`
	EnableSharing    bool     `json:"enableSharing"`
	AllowDownloads   bool     `json:"allowDownloads"`
	AllowedFileTypes []string `json:"allowedFileTypes,omitempty"`
}

// DefaultProjectSettings returns the settings applied to new projects
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		AllowComments:    true,
		ModerateComments: false,
		EnableSharing:    true,
		AllowDownloads:   true,
		AllowedFileTypes: []string{"jpg", "jpeg", "png", "gif", "webp"},
	}
}

// ProjectMetadata represents derived project data
type ProjectMetadata struct {
	TotalImages  int64                `json:"totalImages"`
	LastActivity *time.Time           `json:"lastActivity,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	Contributors []ProjectContributor `json:"contributors,omitempty"`
}

// ProjectContributor represents a contributor on a project
type ProjectContributor struct {
	UserID      uuid.UUID       `json:"userId"`
	Role        ContributorRole `json:"role"`
	JoinedAt    time.Time       `json:"joinedAt"`
	Permissions []string        `json:"permissions,omitempty"`
}

// ProjectFilter represents filter options for querying projects
type ProjectFilter struct {
	OrganizationID *uuid.UUID
	Status         *ProjectStatus
	Visibility     *Visibility
}

// ProjectList represents a paginated list of projects
type ProjectList struct {
	Projects   []Project `json:"projects"`
	TotalCount int64     `json:"total"`
	Page       int       `json:"page"`
	HasMore    bool      `json:"hasMore"`
}
