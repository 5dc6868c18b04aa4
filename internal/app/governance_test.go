package app

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
)

func (e *testEnv) createRole(token, clientID string, body map[string]any) governance.Role {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/governance/roles?client_id="+clientID, token, body)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode[governance.Role](e.t, w)
}

func (e *testEnv) assign(token, userID, roleID string) governance.Assignment {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/governance/user-roles", token, map[string]any{"user_id": userID, "client_role_id": roleID})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode[governance.Assignment](e.t, w)
}

func TestRoleCRUD(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")

	w := env.do(http.MethodPost, "/api/governance/roles", admin, map[string]any{"name": "Lead"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodPost, "/api/governance/roles?client_id=CL9", admin, map[string]any{"name": "Lead"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(http.MethodPost, "/api/governance/roles?client_id=CL1", admin, map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	role := env.createRole(admin, "CL1", map[string]any{"name": " Reviewer "})
	assert.Equal(t, "Reviewer", role.Name)
	assert.Equal(t, "CL1", role.ClientID)
	assert.Equal(t, governance.DefaultPermissions(), role.Permissions)

	w = env.do(http.MethodPut, "/api/governance/roles/"+role.ID, admin, map[string]any{
		"description": "reads and exports",
		"permissions": map[string]bool{"can_view_jobs": true, "can_export_reports": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[governance.Role](t, w)
	assert.Equal(t, "Reviewer", updated.Name)
	assert.Equal(t, "reads and exports", updated.Description)
	assert.True(t, updated.Permissions.CanExportReports)
	assert.False(t, updated.Permissions.CanViewCandidates)

	upd := env.store.auditsOf(audit.RoleUpdate)
	require.Len(t, upd, 1)
	prev := upd[0].PreviousValue["permissions"].(map[string]any)
	assert.Equal(t, true, prev["can_view_candidates"])

	w = env.do(http.MethodGet, "/api/governance/roles?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]governance.Role](t, w), 1)
	w = env.do(http.MethodGet, "/api/governance/roles?client_id=CL2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]governance.Role](t, w))

	w = env.do(http.MethodPut, "/api/governance/roles/role_missing", admin, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/governance/roles/"+role.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Role deleted successfully", decode[map[string]any](t, w)["message"])
	w = env.do(http.MethodDelete, "/api/governance/roles/"+role.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Len(t, env.store.auditsOf(audit.RoleCreate), 1)
	assert.Len(t, env.store.auditsOf(audit.RoleDelete), 1)
}

func TestClientUserRoleAccess(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	ann := env.staffToken("ann@acme.io")
	env.createRole(admin, "CL2", map[string]any{"name": "Globex Only"})

	w := env.do(http.MethodPost, "/api/governance/roles?client_id=CL1", ann, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A client user always reads its own client's roles.
	w = env.do(http.MethodGet, "/api/governance/roles?client_id=CL2", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]governance.Role](t, w))

	manager := env.createRole(admin, "CL1", map[string]any{
		"name":        "Manager",
		"permissions": map[string]bool{"can_manage_roles": true, "can_manage_users": true},
	})
	env.assign(admin, "ann@acme.io", manager.ID)

	role := env.createRole(ann, "CL1", map[string]any{"name": "Mine"})
	assert.Equal(t, "CL1", role.ClientID)

	w = env.do(http.MethodPost, "/api/governance/roles?client_id=CL2", ann, map[string]any{"name": "Theirs"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignments(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	role := env.createRole(admin, "CL1", map[string]any{
		"name":        "Hiring Manager",
		"permissions": map[string]bool{"can_view_jobs": true, "can_manage_users": true},
	})

	w := env.do(http.MethodPost, "/api/governance/user-roles", admin, map[string]any{"user_id": "ann@acme.io"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodPost, "/api/governance/user-roles", admin, map[string]any{"user_id": "ghost@acme.io", "client_role_id": role.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	as := env.assign(admin, "ann@acme.io", role.ID)
	assert.Equal(t, "U_ANN", as.UserID)
	assert.Equal(t, "Hiring Manager", as.RoleName)
	assert.Equal(t, "admin@arbeit.io", as.AssignedBy)

	w = env.do(http.MethodPost, "/api/governance/user-roles", admin, map[string]any{"user_id": "U_ANN", "client_role_id": role.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user already has this role", errorOf(t, w))

	ann := env.staffToken("ann@acme.io")
	w = env.do(http.MethodGet, "/api/governance/permissions", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	perms := decode[MyPermissions](t, w)
	assert.Equal(t, "CL1", perms.ClientID)
	assert.True(t, perms.Permissions.CanManageUsers)
	assert.False(t, perms.Permissions.CanViewCandidates)
	assert.Len(t, perms.Categories, len(governance.Categories))

	// ann may now manage users of her own client.
	env.assign(ann, "carl@acme.io", role.ID)

	w = env.do(http.MethodGet, "/api/governance/user-roles?user_id=U_CARL", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]governance.Assignment](t, w), 1)

	w = env.do(http.MethodGet, "/api/governance/user-roles?user_id=U_CARL", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]governance.Assignment](t, w), 2)

	w = env.do(http.MethodGet, "/api/governance/user-roles", env.staffToken("bob@globex.io"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]governance.Assignment](t, w))

	w = env.do(http.MethodDelete, "/api/governance/user-roles/"+as.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodDelete, "/api/governance/user-roles/"+as.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	revoked := env.store.auditsOf(audit.RoleRevoke)
	require.Len(t, revoked, 1)
	assert.Equal(t, "Hiring Manager", revoked[0].PreviousValue["role_name"])

	// Unassigned again, ann falls back to the basic set.
	w = env.do(http.MethodGet, "/api/governance/permissions", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, governance.BasicClientPermissions(), decode[MyPermissions](t, w).Permissions)
}

func TestDeleteRoleCascades(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	role := env.createRole(admin, "CL1", map[string]any{"name": "Temp"})
	env.assign(admin, "ann@acme.io", role.ID)
	env.assign(admin, "carl@acme.io", role.ID)

	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/governance/roles/"+role.ID, admin, nil).Code)

	w := env.do(http.MethodGet, "/api/governance/user-roles?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]governance.Assignment](t, w))

	del := env.store.auditsOf(audit.RoleDelete)
	require.Len(t, del, 1)
	assert.EqualValues(t, 2, del[0].Metadata["assignments_removed"])
}

func TestSeedDefaultRolesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	env.createRole(admin, "CL1", map[string]any{"name": "interviewer"})

	w := env.do(http.MethodPost, "/api/governance/roles/defaults?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Message string            `json:"message"`
		Roles   []governance.Role `json:"roles"`
	}](t, w)
	assert.Equal(t, "Created 2 default roles", body.Message)
	names := []string{}
	for _, r := range body.Roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Client Owner", "Hiring Manager"}, names)

	w = env.do(http.MethodPost, "/api/governance/roles/defaults?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Created 0 default roles", decode[map[string]any](t, w)["message"])

	w = env.do(http.MethodPost, "/api/governance/roles/defaults", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, e := range env.store.auditsOf(audit.RoleCreate)[1:] {
		assert.Equal(t, true, e.Metadata["template"])
	}
}

func TestAccessMatrix(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	role := env.createRole(admin, "CL1", map[string]any{
		"name":        "Auditor",
		"permissions": map[string]bool{"can_view_audit_log": true},
	})
	env.assign(admin, "ann@acme.io", role.ID)

	w := env.do(http.MethodGet, "/api/governance/access-matrix", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/governance/access-matrix?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rows := decode[[]governance.MatrixRow](t, w)
	require.Len(t, rows, 2)
	byEmail := map[string]governance.MatrixRow{}
	for _, r := range rows {
		byEmail[r.UserEmail] = r
	}
	assert.Equal(t, []string{"Auditor"}, byEmail["ann@acme.io"].Roles)
	assert.True(t, byEmail["ann@acme.io"].Permissions.CanViewAuditLog)
	assert.False(t, byEmail["ann@acme.io"].Permissions.CanViewCandidates)
	assert.Empty(t, byEmail["carl@acme.io"].Roles)
	assert.Equal(t, governance.BasicClientPermissions(), byEmail["carl@acme.io"].Permissions)
	assert.Equal(t, "Acme", byEmail["carl@acme.io"].ClientName)

	// ann can read the matrix but not export it.
	ann := env.staffToken("ann@acme.io")
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/governance/access-matrix?client_id=CL1", ann, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/governance/access-matrix/export?client_id=CL1", ann, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/governance/access-matrix?client_id=CL1", env.staffToken("carl@acme.io"), nil).Code)

	w = env.do(http.MethodGet, "/api/governance/access-matrix/export", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/governance/access-matrix/export?client_id=CL1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=access_matrix_CL1_"))
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"user_email", "user_name", "client_name", "roles"}, records[0][:4])
	assert.Equal(t, governance.Keys, records[0][4:])

	exports := env.store.auditsOf(audit.MatrixExport)
	require.Len(t, exports, 1)
	assert.Equal(t, 2, exports[0].Metadata["users"])
}

func TestAuditLog(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	env.createRole(admin, "CL1", map[string]any{"name": "A"})
	env.createRole(admin, "CL2", map[string]any{"name": "B"})
	env.createInterview()

	w := env.do(http.MethodGet, "/api/governance/audit", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]audit.Entry](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, audit.InterviewCreate, all[0].ActionType)

	w = env.do(http.MethodGet, "/api/governance/audit?action_type=ROLE_CREATE&client_id=CL2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	only := decode[[]audit.Entry](t, w)
	require.Len(t, only, 1)
	assert.Equal(t, "B", only[0].NewValue["name"])

	w = env.do(http.MethodGet, "/api/governance/audit?limit=1&skip=1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]audit.Entry](t, w), 1)

	w = env.do(http.MethodGet, "/api/governance/audit?from_date=2000-01-01&to_date=2000-01-02", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]audit.Entry](t, w))

	today := time.Now().UTC().Format(time.DateOnly)
	w = env.do(http.MethodGet, "/api/governance/audit?from_date="+today+"&to_date="+today, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]audit.Entry](t, w), 3)

	w = env.do(http.MethodGet, "/api/governance/audit?from_date=yesterday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Client users need the audit permission and only see their client.
	ann := env.staffToken("ann@acme.io")
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/governance/audit", ann, nil).Code)

	auditor := env.createRole(admin, "CL1", map[string]any{
		"name":        "Auditor",
		"permissions": map[string]bool{"can_view_audit_log": true, "can_export_reports": true},
	})
	env.assign(admin, "ann@acme.io", auditor.ID)
	w = env.do(http.MethodGet, "/api/governance/audit?client_id=CL2", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, e := range decode[[]audit.Entry](t, w) {
		assert.Equal(t, "CL1", e.ClientID)
	}
}

func TestExportAuditLog(t *testing.T) {
	env := newTestEnv(t)
	admin := env.staffToken("admin@arbeit.io")
	env.createRole(admin, "CL1", map[string]any{"name": "A"})

	w := env.do(http.MethodGet, "/api/governance/audit/export?limit=0", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=audit_logs_"))
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "log_id", records[0][0])
	assert.Equal(t, audit.RoleCreate, records[1][5])

	exports := env.store.auditsOf(audit.LogExport)
	require.Len(t, exports, 1)
	assert.Equal(t, 1, exports[0].Metadata["count"])

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/governance/audit/export", env.staffToken("ann@acme.io"), nil).Code)
}

func TestMyPermissionsForStaff(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/governance/permissions?client_id=CL1", env.staffToken("rec@arbeit.io"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[MyPermissions](t, w)
	assert.Equal(t, governance.RoleRecruiter, body.Role)
	assert.Equal(t, governance.AllPermissions(), body.Permissions)
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("2025-05-20", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseDate("2025-05-20", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 20, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = parseDate("2025-05-20T10:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC), *got)

	_, err = parseDate("20/05/2025", false)
	assert.Error(t, err)
}
