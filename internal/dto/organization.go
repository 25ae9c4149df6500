package dto

// CreateOrganizationRequest represents the request to create an organization
type CreateOrganizationRequest struct {
	Name        string                `json:"name" validate:"required,min=2,max=100"`
	Slug        string                `json:"slug,omitempty" validate:"omitempty,min=2,max=100,slug"`
	Description string                `json:"description,omitempty" validate:"omitempty,max=500"`
	Settings    *OrganizationSettings `json:"settings,omitempty"`
}

// UpdateOrganizationRequest represents the request to update an organization
type UpdateOrganizationRequest struct {
	Name        *string               `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string               `json:"description,omitempty" validate:"omitempty,max=500"`
	Status      *string               `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
	Settings    *OrganizationSettings `json:"settings,omitempty"`
}

// OrganizationSettings carries organization settings in requests
type OrganizationSettings struct {
	AllowPublicProjects      *bool   `json:"allowPublicProjects,omitempty"`
	DefaultProjectVisibility *string `json:"defaultProjectVisibility,omitempty" validate:"omitempty,oneof=public private"`
	MaxMembers               *int    `json:"maxMembers,omitempty" validate:"omitempty,min=1"`
	CustomDomain             *string `json:"customDomain,omitempty"`
}

// UpdateOrganizationProjectsRequest represents a bulk update of the projects
// in an organization: archive all active ones, or set visibility on all.
type UpdateOrganizationProjectsRequest struct {
	Action     string `json:"action" validate:"required,oneof=archive visibility"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}
