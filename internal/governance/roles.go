package governance

import (
	"strings"
	"time"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/interview"
)

// Role is a named permission bundle owned by one client.
type Role struct {
	ID          string        `json:"role_id"`
	ClientID    string        `json:"client_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Permissions PermissionSet `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RoleInput is the create/update body. On update nil fields are kept.
type RoleInput struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Permissions *PermissionSet `json:"permissions,omitempty"`
}

// NewRole builds a role for clientID from in. Missing permissions fall back
// to DefaultPermissions.
func NewRole(clientID string, in RoleInput, now time.Time) (*Role, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Invalid("role name is required")
	}
	perms := DefaultPermissions()
	if in.Permissions != nil {
		perms = *in.Permissions
	}
	r := &Role{
		ID:          interview.NewID("role", 12),
		ClientID:    clientID,
		Name:        strings.TrimSpace(*in.Name),
		Permissions: perms,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	return r, nil
}

// Apply updates r in place.
func (r *Role) Apply(in RoleInput, now time.Time) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Invalid("role name cannot be empty")
		}
		r.Name = name
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Permissions != nil {
		r.Permissions = *in.Permissions
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// Assignment binds one user to one role within the role's client.
type Assignment struct {
	ID         string    `json:"assignment_id"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	ClientID   string    `json:"client_id"`
	RoleID     string    `json:"client_role_id"`
	RoleName   string    `json:"role_name"`
	AssignedBy string    `json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAssignment binds u to r.
func NewAssignment(u User, r Role, assignedBy string, now time.Time) *Assignment {
	return &Assignment{
		ID:         interview.NewID("assignment", 12),
		UserID:     u.ID,
		UserEmail:  u.Email,
		ClientID:   r.ClientID,
		RoleID:     r.ID,
		RoleName:   r.Name,
		AssignedBy: assignedBy,
		CreatedAt:  now.UTC(),
	}
}

// Template is a starter role seeded for new clients.
type Template struct {
	Name        string
	Description string
	Permissions PermissionSet
}

// Templates are the default roles, in seeding order.
var Templates = []Template{
	{
		Name:        "Client Owner",
		Description: "Full access to manage jobs, candidates, and view reports",
		Permissions: func() PermissionSet {
			p := AllPermissions()
			p.CanDeleteJobs = false
			p.CanDeleteCandidates = false
			return p
		}(),
	},
	{
		Name:        "Hiring Manager",
		Description: "Can manage jobs and candidates, upload CVs, and update status",
		Permissions: PermissionSet{
			CanViewJobs:              true,
			CanCreateJobs:            true,
			CanEditJobs:              true,
			CanViewCandidates:        true,
			CanCreateCandidates:      true,
			CanEditCandidates:        true,
			CanUpdateCandidateStatus: true,
			CanUploadCV:              true,
			CanReplaceCV:             true,
			CanViewRedactedCV:        true,
		},
	},
	{
		Name:        "Interviewer",
		Description: "Read-only access to view jobs and candidates",
		Permissions: DefaultPermissions(),
	},
}

// DefaultRoles instantiates Templates for clientID.
func DefaultRoles(clientID string, now time.Time) []Role {
	out := make([]Role, 0, len(Templates))
	for _, t := range Templates {
		name, desc, perms := t.Name, t.Description, t.Permissions
		r, _ := NewRole(clientID, RoleInput{Name: &name, Description: &desc, Permissions: &perms}, now)
		out = append(out, *r)
	}
	return out
}
