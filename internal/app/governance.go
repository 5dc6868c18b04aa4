package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
)

// ListRoles returns clientID's roles. Internal staff may omit clientID to see
// every client; client users always get their own.
func (a *App) ListRoles(ctx context.Context, s Session, clientID string) ([]governance.Role, error) {
	if !governance.IsInternal(s.User.Role) {
		if err := a.require(ctx, s, s.User.ClientID, "", "role", ""); err != nil {
			return nil, err
		}
		clientID = s.User.ClientID
	}
	return a.Store.ListRoles(ctx, clientID)
}

func (a *App) CreateRole(ctx context.Context, s Session, clientID string, in governance.RoleInput) (*governance.Role, error) {
	if clientID == "" {
		return nil, apperr.Invalid("client_id is required")
	}
	if err := a.require(ctx, s, clientID, governance.ManageRoles, "role", ""); err != nil {
		return nil, err
	}
	if _, err := a.Store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	r, err := governance.NewRole(clientID, in, a.now())
	if err != nil {
		return nil, err
	}
	if err := a.Store.CreateRole(ctx, r); err != nil {
		return nil, err
	}
	e := audit.New(s.Actor(), audit.RoleCreate, "role", r.ID, clientID, a.now())
	e.NewValue = map[string]any{"name": r.Name, "permissions": r.Permissions.Map()}
	a.appendAudit(ctx, e)
	return r, nil
}

func (a *App) UpdateRole(ctx context.Context, s Session, id string, in governance.RoleInput) (*governance.Role, error) {
	r, err := a.Store.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.require(ctx, s, r.ClientID, governance.ManageRoles, "role", id); err != nil {
		return nil, err
	}
	prev := r.Permissions
	if err := r.Apply(in, a.now()); err != nil {
		return nil, err
	}
	if err := a.Store.UpdateRole(ctx, r); err != nil {
		return nil, err
	}
	e := audit.New(s.Actor(), audit.RoleUpdate, "role", r.ID, r.ClientID, a.now())
	e.PreviousValue = map[string]any{"permissions": prev.Map()}
	e.NewValue = map[string]any{"name": r.Name, "permissions": r.Permissions.Map()}
	a.appendAudit(ctx, e)
	return r, nil
}

// DeleteRole removes the role and every assignment of it.
func (a *App) DeleteRole(ctx context.Context, s Session, id string) error {
	r, err := a.Store.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if err := a.require(ctx, s, r.ClientID, governance.ManageRoles, "role", id); err != nil {
		return err
	}
	removed, err := a.Store.DeleteRole(ctx, id)
	if err != nil {
		return err
	}
	e := audit.New(s.Actor(), audit.RoleDelete, "role", r.ID, r.ClientID, a.now())
	e.PreviousValue = map[string]any{"name": r.Name}
	e.Metadata = map[string]any{"assignments_removed": removed}
	a.appendAudit(ctx, e)
	return nil
}

// SeedDefaultRoles creates the template roles clientID does not have yet,
// matched by name.
func (a *App) SeedDefaultRoles(ctx context.Context, s Session, clientID string) ([]governance.Role, error) {
	if clientID == "" {
		return nil, apperr.Invalid("client_id is required")
	}
	if err := a.require(ctx, s, clientID, governance.ManageRoles, "role", ""); err != nil {
		return nil, err
	}
	if _, err := a.Store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	existing, err := a.Store.ListRoles(ctx, clientID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[strings.ToLower(r.Name)] = true
	}
	created := []governance.Role{}
	for _, r := range governance.DefaultRoles(clientID, a.now()) {
		if have[strings.ToLower(r.Name)] {
			continue
		}
		r := r
		if err := a.Store.CreateRole(ctx, &r); err != nil {
			return nil, err
		}
		e := audit.New(s.Actor(), audit.RoleCreate, "role", r.ID, clientID, a.now())
		e.NewValue = map[string]any{"name": r.Name, "permissions": r.Permissions.Map()}
		e.Metadata = map[string]any{"template": true}
		a.appendAudit(ctx, e)
		created = append(created, r)
	}
	return created, nil
}

// AssignRole binds the user named by userID (id or email) to roleID.
func (a *App) AssignRole(ctx context.Context, s Session, userID, roleID string) (*governance.Assignment, error) {
	if userID == "" || roleID == "" {
		return nil, apperr.Invalid("user_id and client_role_id are required")
	}
	r, err := a.Store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if err := a.require(ctx, s, r.ClientID, governance.ManageUsers, "user_role", ""); err != nil {
		return nil, err
	}
	u, err := a.Store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	as := governance.NewAssignment(*u, *r, s.User.Email, a.now())
	if err := a.Store.CreateAssignment(ctx, as); err != nil {
		return nil, err
	}
	e := audit.New(s.Actor(), audit.RoleAssign, "user_role", as.ID, r.ClientID, a.now())
	e.NewValue = map[string]any{"user_id": as.UserID, "role_name": r.Name}
	a.appendAudit(ctx, e)
	return as, nil
}

// ListAssignments filters by client and user for internal staff. Client users
// see their own client only.
func (a *App) ListAssignments(ctx context.Context, s Session, clientID, userID string) ([]governance.Assignment, error) {
	if !governance.IsInternal(s.User.Role) {
		if err := a.require(ctx, s, s.User.ClientID, "", "user_role", ""); err != nil {
			return nil, err
		}
		clientID, userID = s.User.ClientID, ""
	}
	return a.Store.ListAssignments(ctx, clientID, userID)
}

func (a *App) RevokeRole(ctx context.Context, s Session, id string) error {
	as, err := a.Store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if err := a.require(ctx, s, as.ClientID, governance.ManageUsers, "user_role", id); err != nil {
		return err
	}
	if err := a.Store.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	e := audit.New(s.Actor(), audit.RoleRevoke, "user_role", id, as.ClientID, a.now())
	e.PreviousValue = map[string]any{"user_id": as.UserID, "role_name": as.RoleName}
	a.appendAudit(ctx, e)
	return nil
}

// MyPermissions is the caller's effective permission set inside clientID.
type MyPermissions struct {
	ClientID    string                   `json:"client_id,omitempty"`
	Role        string                   `json:"role"`
	Permissions governance.PermissionSet `json:"permissions"`
	Categories  []governance.Category    `json:"categories"`
}

func (a *App) MyPermissions(ctx context.Context, s Session, clientID string) (*MyPermissions, error) {
	if s.Kind != StaffSession {
		return nil, apperr.Forbidden("access denied")
	}
	if !governance.IsInternal(s.User.Role) {
		clientID = s.User.ClientID
	}
	perms, err := a.permissions(ctx, s.User, clientID)
	if err != nil {
		return nil, err
	}
	return &MyPermissions{
		ClientID:    clientID,
		Role:        s.User.Role,
		Permissions: perms,
		Categories:  governance.Categories,
	}, nil
}

// auditScope narrows f to what s may read. perm is checked for client users.
func (a *App) auditScope(ctx context.Context, s Session, f *audit.Filter, perm string) error {
	if governance.IsInternal(s.User.Role) && s.Kind == StaffSession {
		return nil
	}
	if err := a.require(ctx, s, s.User.ClientID, perm, "audit_log", ""); err != nil {
		return err
	}
	f.ClientID = s.User.ClientID
	return nil
}

func (a *App) AuditLog(ctx context.Context, s Session, f audit.Filter) ([]audit.Entry, error) {
	if err := a.auditScope(ctx, s, &f, governance.ViewAuditLog); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = audit.DefaultLimit
	}
	return a.Store.ListAudit(ctx, f)
}

// ExportAuditLog returns up to audit.ExportLimit entries and records the export.
func (a *App) ExportAuditLog(ctx context.Context, s Session, f audit.Filter) ([]audit.Entry, error) {
	if err := a.auditScope(ctx, s, &f, governance.ExportReports); err != nil {
		return nil, err
	}
	f.Limit, f.Skip = audit.ExportLimit, 0
	entries, err := a.Store.ListAudit(ctx, f)
	if err != nil {
		return nil, err
	}
	e := audit.New(s.Actor(), audit.LogExport, "audit_log", "", f.ClientID, a.now())
	e.Metadata = map[string]any{"count": len(entries)}
	a.appendAudit(ctx, e)
	return entries, nil
}

// AccessMatrix projects every user of clientID with roles and effective
// permissions.
func (a *App) AccessMatrix(ctx context.Context, s Session, clientID string) ([]governance.MatrixRow, error) {
	return a.accessMatrix(ctx, s, clientID, governance.ViewAuditLog)
}

func (a *App) ExportAccessMatrix(ctx context.Context, s Session, clientID string) ([]governance.MatrixRow, error) {
	rows, err := a.accessMatrix(ctx, s, clientID, governance.ExportReports)
	if err != nil {
		return nil, err
	}
	e := audit.New(s.Actor(), audit.MatrixExport, "access_matrix", clientID, clientID, a.now())
	e.Metadata = map[string]any{"users": len(rows)}
	a.appendAudit(ctx, e)
	return rows, nil
}

func (a *App) accessMatrix(ctx context.Context, s Session, clientID, perm string) ([]governance.MatrixRow, error) {
	if clientID == "" {
		return nil, apperr.Invalid("client_id is required")
	}
	if err := a.require(ctx, s, clientID, perm, "access_matrix", clientID); err != nil {
		return nil, err
	}
	client, err := a.Store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	users, err := a.Store.ListClientUsers(ctx, clientID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.Store.ListAssignments(ctx, clientID, "")
	if err != nil {
		return nil, err
	}
	roles, err := a.Store.ListRoles(ctx, clientID)
	if err != nil {
		return nil, err
	}
	a.Log.Debug("access matrix built",
		zap.String("client_id", clientID),
		zap.Int("users", len(users)),
		zap.Int("roles", len(roles)))
	return governance.BuildMatrix(clientID, client.CompanyName, users, assignments, roles), nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain to-date
// covers the whole day.
func parseDate(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, apperr.Invalid("invalid date %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
