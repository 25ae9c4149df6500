package domain

// OrgRole represents a member's role within an organization
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

// Valid returns true if the role is a known organization role
func (r OrgRole) Valid() bool {
	switch r {
	case OrgRoleOwner, OrgRoleAdmin, OrgRoleMember:
		return true
	}
	return false
}

// OrgStatus represents the lifecycle state of an organization
type OrgStatus string

const (
	OrgStatusActive   OrgStatus = "active"
	OrgStatusInactive OrgStatus = "inactive"
	OrgStatusArchived OrgStatus = "archived"
)

// Valid returns true if the status is a known organization status
func (s OrgStatus) Valid() bool {
	switch s {
	case OrgStatusActive, OrgStatusInactive, OrgStatusArchived:
		return true
	}
	return false
}

// Visibility represents whether a project is publicly visible
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid returns true if the visibility is a known value
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Valid returns true if the status is a known project status
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusActive || s == ProjectStatusArchived
}

// ContributorRole represents a contributor's role on a project
type ContributorRole string

const (
	ContributorRoleOwner  ContributorRole = "owner"
	ContributorRoleEditor ContributorRole = "editor"
	ContributorRoleViewer ContributorRole = "viewer"
)

// Valid returns true if the role is a known contributor role
func (r ContributorRole) Valid() bool {
	switch r {
	case ContributorRoleOwner, ContributorRoleEditor, ContributorRoleViewer:
		return true
	}
	return false
}
