// Package models provides domain types for the FixPoint client.
// The shapes mirror the backend's REST payloads; fields are added, never
// renamed, to stay forward-compatible with backend releases.
package models

import "time"

// Role is the authorization role assigned to a user by the backend.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleAdmin    Role = "ADMIN"
	RoleNGOStaff Role = "NGO_STAFF"
	RoleOrgAdmin Role = "ORG_ADMIN"
	RoleOrgStaff Role = "ORG_STAFF"
)

// Elevated reports whether the role is granted broadcast-channel visibility.
func (r Role) Elevated() bool {
	return r == RoleAdmin
}

// UserType distinguishes how the account participates in the platform.
type UserType string

const (
	UserTypeCitizen           UserType = "CITIZEN"
	UserTypeOrganizationAdmin UserType = "ORGANIZATION_ADMIN"
	UserTypeOrganizationStaff UserType = "ORGANIZATION_STAFF"
	UserTypeVolunteer         UserType = "VOLUNTEER"
	UserTypeSystemAdmin       UserType = "SYSTEM_ADMIN"
)

// User is the full profile returned by the auth endpoints.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName,omitempty"`
	Role          Role      `json:"role"`
	UserType      UserType  `json:"userType,omitempty"`
	Organization  *OrgRef   `json:"organization,omitempty"`
	IsVolunteer   bool      `json:"isVolunteer,omitempty"`
	EmailVerified bool      `json:"emailVerified,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// UserRef is the minimal identity embedded in messages and comments.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Ref returns the embeddable reference for a full profile.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

// OrgRef identifies an organization a staff account belongs to.
type OrgRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}
