package dto

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name           string           `json:"name" validate:"required,min=2,max=100"`
	Slug           string           `json:"slug,omitempty" validate:"omitempty,min=2,max=100,slug"`
	Description    string           `json:"description,omitempty" validate:"omitempty,max=500"`
	OrganizationID string           `json:"organizationId" validate:"required,uuid"`
	Visibility     string           `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Settings       *ProjectSettings `json:"settings,omitempty"`
	Tags           []string         `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Slug        *string          `json:"slug,omitempty" validate:"omitempty,min=2,max=100,slug"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Visibility  *string          `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Settings    *ProjectSettings `json:"settings,omitempty"`
	Tags        []string         `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// ProjectSettings carries project settings in requests
type ProjectSettings struct {
	AllowComments    *bool    `json:"allowComments,omitempty"`
	ModerateComments *bool    `json:"moderateComments,omitempty"`
	EnableSharing    *bool    `json:"enableSharing,omitempty"`
	AllowDownloads   *bool    `json:"allowDownloads,omitempty"`
	AllowedFileTypes []string `json:"allowedFileTypes,omitempty"`
}

// TransferProjectRequest represents the request to move a project between
// organizations
type TransferProjectRequest struct {
	FromOrganizationID string `json:"fromOrganizationId" validate:"required,uuid"`
	ToOrganizationID   string `json:"toOrganizationId" validate:"required,uuid"`
}
