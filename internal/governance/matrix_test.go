package governance

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func role(id, client string, p PermissionSet) Role {
	return Role{ID: id, ClientID: client, Name: id, Permissions: p}
}

func TestEffectiveIsUnionOfRoles(t *testing.T) {
	u := User{ID: "u1", Email: "ann@acme.io", Role: RoleClientUser, ClientID: "CL1"}
	r1 := role("R1", "CL1", PermissionSet{CanViewJobs: true, CanEditJobs: false})
	r2 := role("R2", "CL1", PermissionSet{CanEditJobs: true})
	as := []Assignment{
		{UserID: "u1", ClientID: "CL1", RoleID: "R1", RoleName: "R1"},
		{UserID: "ann@acme.io", ClientID: "CL1", RoleID: "R2", RoleName: "R2"},
	}

	p := Effective(u, "CL1", as, []Role{r1, r2})
	assert.True(t, p.CanViewJobs)
	assert.True(t, p.CanEditJobs)
	assert.False(t, p.CanDeleteJobs)
	assert.False(t, p.CanManageRoles)
}

func TestEffectiveDefaults(t *testing.T) {
	admin := User{ID: "a", Role: RoleAdmin}
	assert.Equal(t, AllPermissions(), Effective(admin, "CL1", nil, nil))
	assert.Equal(t, AllPermissions(), Effective(User{Role: RoleRecruiter}, "", nil, nil))

	cu := User{ID: "u1", Role: RoleClientUser, ClientID: "CL1"}
	basic := Effective(cu, "", nil, nil)
	assert.Equal(t, BasicClientPermissions(), basic)
	assert.True(t, basic.CanUploadCV)
	assert.False(t, basic.CanDeleteCandidates)

	assert.Equal(t, DefaultPermissions(), Effective(User{ID: "u2", Role: RoleClientUser}, "", nil, nil))
}

func TestEffectiveIgnoresOtherClients(t *testing.T) {
	u := User{ID: "u1", Role: RoleClientUser, ClientID: "CL1"}
	as := []Assignment{{UserID: "u1", ClientID: "CL2", RoleID: "R9"}}
	roles := []Role{role("R9", "CL2", AllPermissions())}

	assert.Equal(t, BasicClientPermissions(), Effective(u, "CL1", as, roles))
	assert.True(t, Effective(u, "CL2", as, roles).CanManageUsers)
}

func TestPermissionSetHasAndKeys(t *testing.T) {
	require.Len(t, Keys, 18)
	p := PermissionSet{CanExportReports: true}
	assert.True(t, p.Has(ExportReports))
	assert.False(t, p.Has(ViewJobs))
	assert.False(t, p.Has("can_fly"))

	total := 0
	for _, c := range Categories {
		total += len(c.Keys)
	}
	assert.Equal(t, len(Keys), total)
	for _, k := range Keys {
		assert.True(t, AllPermissions().Has(k), k)
	}
}

func TestTemplates(t *testing.T) {
	roles := DefaultRoles("CL1", now)
	require.Len(t, roles, 3)

	owner := roles[0]
	assert.Equal(t, "Client Owner", owner.Name)
	assert.True(t, owner.Permissions.CanManageRoles)
	assert.False(t, owner.Permissions.CanDeleteJobs)
	assert.False(t, owner.Permissions.CanDeleteCandidates)

	interviewer := roles[2]
	assert.Equal(t, DefaultPermissions(), interviewer.Permissions)
	assert.NotEqual(t, roles[0].ID, roles[1].ID)
	for _, r := range roles {
		assert.Equal(t, "CL1", r.ClientID)
	}
}

func TestNewRoleValidation(t *testing.T) {
	_, err := NewRole("CL1", RoleInput{}, now)
	assert.Error(t, err)

	name := "Sourcer"
	r, err := NewRole("CL1", RoleInput{Name: &name}, now)
	require.NoError(t, err)
	assert.Equal(t, DefaultPermissions(), r.Permissions)

	empty := " "
	assert.Error(t, r.Apply(RoleInput{Name: &empty}, now))
}

func TestBuildMatrixAndCSV(t *testing.T) {
	users := []User{
		{ID: "u1", Email: "ann@acme.io", Name: "Ann", Role: RoleClientUser, ClientID: "CL1"},
		{ID: "u2", Email: "bob@acme.io", Role: RoleClientUser, ClientID: "CL1"},
	}
	roles := []Role{role("R1", "CL1", PermissionSet{CanViewJobs: true}), role("R2", "CL1", PermissionSet{CanEditJobs: true})}
	as := []Assignment{
		{UserID: "u1", ClientID: "CL1", RoleID: "R1", RoleName: "Viewer"},
		{UserID: "u1", ClientID: "CL1", RoleID: "R2", RoleName: "Editor"},
	}

	rows := BuildMatrix("CL1", "Acme", users, as, roles)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Viewer", "Editor"}, rows[0].Roles)
	assert.True(t, rows[0].Permissions.CanViewJobs && rows[0].Permissions.CanEditJobs)
	assert.Equal(t, "bob@acme.io", rows[1].UserName)
	assert.Empty(t, rows[1].Roles)
	assert.Equal(t, BasicClientPermissions(), rows[1].Permissions)

	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, rows))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Len(t, recs[0], 4+len(Keys))
	assert.Equal(t, "Viewer, Editor", recs[1][3])
	assert.Equal(t, "true", recs[1][4])
}
