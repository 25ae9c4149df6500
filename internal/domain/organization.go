package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents an organization
type Organization struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	Description string               `json:"description,omitempty"`
	Status      OrgStatus            `json:"status"`
	Settings    OrganizationSettings `json:"settings"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`

	// Related data (populated on demand)
	Members  []OrganizationMember `json:"members,omitempty"`
	Projects []Project            `json:"projects,omitempty"`
}

// OrganizationSettings represents organization-level settings
type OrganizationSettings struct {
	AllowPublicProjects      bool       `json:"allowPublicProjects"`
	DefaultProjectVisibility Visibility `json:"defaultProjectVisibility"`
	MaxMembers               *int       `json:"maxMembers,omitempty"`
	CustomDomain             *string    `json:"customDomain,omitempty"`
}

// DefaultOrganizationSettings returns the settings applied to new organizations
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		AllowPublicProjects:      true,
		DefaultProjectVisibility: VisibilityPrivate,
	}
}

// OrganizationMember represents a member of an organization
type OrganizationMember struct {
	UserID   uuid.UUID `json:"userId"`
	Role     OrgRole   `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// OrganizationList represents a paginated list of organizations
type OrganizationList struct {
	Organizations []Organization `json:"organizations"`
	TotalCount    int64          `json:"totalCount"`
	HasMore       bool           `json:"hasMore"`
}

// OrganizationProjectStats represents the project counts for an organization.
// The counts overlap: an active project also appears in the public or private
// count, so the five values do not sum to total.
type OrganizationProjectStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Archived int64 `json:"archived"`
	Public   int64 `json:"public"`
	Private  int64 `json:"private"`
}

// GenerateSlug generates a URL-safe slug from a name
func GenerateSlug(name string) string {
	// Simple slug generation - replace spaces with hyphens, lowercase
	slug := ""
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			slug += string(r)
		} else if r >= 'A' && r <= 'Z' {
			slug += string(r + 32) // lowercase
		} else if r >= '0' && r <= '9' {
			slug += string(r)
		} else if r == ' ' || r == '-' || r == '_' {
			if len(slug) > 0 && slug[len(slug)-1] != '-' {
				slug += "-"
			}
		}
	}
	// Trim trailing hyphens
	for len(slug) > 0 && slug[len(slug)-1] == '-' {
		slug = slug[:len(slug)-1]
	}
	return slug
}
